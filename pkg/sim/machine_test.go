package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/softuart/pkg/uart"
)

type irqRecorder struct {
	m     *Machine
	order []uart.IRQ
	ticks []uint16
}

func newIRQRecorder(t *testing.T, m *Machine) *irqRecorder {
	r := &irqRecorder{m: m}
	for irq := uart.IRQ(0); int(irq) < uart.NumIRQs; irq++ {
		irq := irq
		require.NoError(t, m.Attach(irq, func() {
			r.order = append(r.order, irq)
			r.ticks = append(r.ticks, m.Count())
		}))
	}
	return r
}

func TestInterruptPriority(t *testing.T) {
	m := NewMachine(0)
	rec := newIRQRecorder(t, m)
	w := NewWire()
	m.SenseFalling(NewPin(w))
	m.Schedule(w, 10, false)
	m.SetCompare(uart.IRQTransmit, 10)
	m.SetCompare(uart.IRQReceive, 10)
	for irq := uart.IRQ(0); int(irq) < uart.NumIRQs; irq++ {
		m.Enable(irq)
	}
	m.Advance(10)
	require.Equal(t, []uart.IRQ{uart.IRQEdge, uart.IRQTransmit, uart.IRQReceive}, rec.order)
	require.Equal(t, []uint16{10, 10, 10}, rec.ticks)
}

func TestEdgeLatchedWhileMasked(t *testing.T) {
	m := NewMachine(0)
	rec := newIRQRecorder(t, m)
	w := NewWire()
	m.SenseFalling(NewPin(w))
	m.Schedule(w, 5, false)
	m.Advance(10)
	require.Empty(t, rec.order)

	m.Lock()
	m.Enable(uart.IRQEdge)
	m.Unlock()
	m.Advance(1)
	require.Equal(t, []uart.IRQ{uart.IRQEdge}, rec.order)
	require.Equal(t, uint16(11), rec.ticks[0])

	// a latched edge cleared before enabling is forgotten
	m.Lock()
	m.Disable(uart.IRQEdge)
	m.Unlock()
	m.Schedule(w, 15, true)
	m.Schedule(w, 20, false)
	m.Advance(15)
	m.Lock()
	m.ClearPending(uart.IRQEdge)
	m.Enable(uart.IRQEdge)
	m.Unlock()
	m.Advance(10)
	require.Len(t, rec.order, 1)
	require.Equal(t, uint64(1), m.Dispatched(uart.IRQEdge))
}

func TestCompareWrapsAround(t *testing.T) {
	m := NewMachine(0)
	rec := newIRQRecorder(t, m)
	m.SetCompare(uart.IRQTransmit, 5)
	m.Enable(uart.IRQTransmit)
	m.Advance(0x10000 + 10)
	require.Equal(t, []uart.IRQ{uart.IRQTransmit, uart.IRQTransmit}, rec.order)
	require.Equal(t, []uint16{5, 5}, rec.ticks)
	require.True(t, m.Armed(uart.IRQTransmit))
	require.False(t, m.Armed(uart.IRQReceive))
}

func TestAttachTwice(t *testing.T) {
	m := NewMachine(0)
	require.NoError(t, m.Attach(uart.IRQEdge, func() {}))
	require.Equal(t, uart.ErrIRQInUse, m.Attach(uart.IRQEdge, func() {}))
}

func TestDetach(t *testing.T) {
	m := NewMachine(0)
	calls := 0
	require.NoError(t, m.Attach(uart.IRQTransmit, func() { calls++ }))
	m.Lock()
	m.SetCompare(uart.IRQTransmit, 5)
	m.Enable(uart.IRQTransmit)
	m.Unlock()
	m.Detach(uart.IRQTransmit)
	require.False(t, m.Armed(uart.IRQTransmit))
	m.Advance(10)
	require.Zero(t, calls)
	require.NoError(t, m.Attach(uart.IRQTransmit, func() {}))
}

func TestScheduleAndProbe(t *testing.T) {
	m := NewMachine(0)
	w := NewWire()
	trace := m.Probe(w)
	m.Schedule(w, 30, true)
	m.Schedule(w, 10, false)
	m.Schedule(w, 20, true)
	m.Schedule(w, 25, false)
	m.Advance(40)
	require.Equal(t, []Transition{
		{Tick: 10, High: false},
		{Tick: 20, High: true},
		{Tick: 25, High: false},
		{Tick: 30, High: true},
	}, trace.Transitions())
	require.True(t, trace.LevelAt(5))
	require.False(t, trace.LevelAt(25))
	fall, ok := trace.FirstFall(21)
	require.True(t, ok)
	require.Equal(t, uint64(25), fall)
	_, ok = trace.FirstFall(26)
	require.False(t, ok)
}

func TestScheduleFrame(t *testing.T) {
	m := NewMachine(0)
	w := NewWire()
	trace := m.Probe(w)
	end := m.ScheduleFrame(w, 0x0f, 100, 10)
	require.Equal(t, uint64(200), end)
	m.Advance(end)
	require.Equal(t, []Transition{
		{Tick: 100, High: false},
		{Tick: 110, High: true},
		{Tick: 150, High: false},
		{Tick: 190, High: true},
	}, trace.Transitions())
}

func TestOutputPinDrivesWire(t *testing.T) {
	w := NewWire()
	p := NewPin(w)
	require.Equal(t, PinUnconfigured, p.Mode())
	p.Set(false)
	require.True(t, w.Level())
	p.ConfigureOutput()
	p.Set(false)
	require.False(t, w.Level())
	require.False(t, p.Get())
	p.ConfigureInputPullUp()
	p.Set(true)
	require.False(t, w.Level())
}

func TestMachineRun(t *testing.T) {
	m := NewMachine(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, m.Run(ctx))
	require.NotZero(t, m.Now())
}

func TestMachineRunRealtime(t *testing.T) {
	m := NewMachine(1000000)
	m.Realtime = true
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, m.Run(ctx))
	// paced to the tick rate, far below free-running speed
	require.True(t, m.Now() > 0 && m.Now() < 500000, "ticks %d", m.Now())
}
