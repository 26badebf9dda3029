package sim

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/robotalks/softuart/pkg/uart"
)

// DefaultTickRate is a 16 MHz core clock with a /8 timer prescaler.
const DefaultTickRate uint32 = 16000000 / 8

const (
	freeRunBatch  = 256
	realtimeSlice = time.Millisecond
)

// Device is stepped once per timer tick, before interrupts are dispatched.
type Device interface {
	Step(now uint64)
}

type drive struct {
	at   uint64
	wire *Wire
	high bool
}

// Machine implements uart.Hardware. Interrupt handlers are called with
// the machine lock held, the same lock Lock and Unlock take for the
// critical section, so a handler never runs concurrently with one.
//
// Interrupt priority follows the IRQ number: edge first, then the
// transmit compare, then the receive compare.
type Machine struct {
	// Realtime paces Run to the tick rate instead of free-running.
	Realtime bool

	mu         sync.Mutex
	tickRate   uint32
	now        uint64
	compare    [uart.NumIRQs]uint16
	enabled    [uart.NumIRQs]bool
	pending    [uart.NumIRQs]bool
	handlers   [uart.NumIRQs]func()
	dispatched [uart.NumIRQs]uint64
	sense      *Wire
	lastSense  bool
	devices    []Device
	drives     []drive
	probes     []*Trace
}

var _ uart.Hardware = (*Machine)(nil)

// NewMachine creates a machine whose timer counts tickRate ticks per second.
func NewMachine(tickRate uint32) *Machine {
	if tickRate == 0 {
		tickRate = DefaultTickRate
	}
	return &Machine{tickRate: tickRate}
}

// Name implements framework.Named.
func (m *Machine) Name() string {
	return "line-service"
}

// TickRate implements uart.Timer.
func (m *Machine) TickRate() uint32 {
	return m.tickRate
}

// Count implements uart.Timer.
func (m *Machine) Count() uint16 {
	return uint16(m.now)
}

// Compare implements uart.Timer.
func (m *Machine) Compare(irq uart.IRQ) uint16 {
	return m.compare[irq]
}

// SetCompare implements uart.Timer.
func (m *Machine) SetCompare(irq uart.IRQ, at uint16) {
	m.compare[irq] = at
}

// Lock implements uart.Interrupts.
func (m *Machine) Lock() {
	m.mu.Lock()
}

// Unlock implements uart.Interrupts.
func (m *Machine) Unlock() {
	m.mu.Unlock()
}

// Attach implements uart.Interrupts.
func (m *Machine) Attach(irq uart.IRQ, handler func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handlers[irq] != nil {
		return uart.ErrIRQInUse
	}
	m.handlers[irq] = handler
	return nil
}

// Detach implements uart.Interrupts.
func (m *Machine) Detach(irq uart.IRQ) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[irq] = nil
	m.enabled[irq] = false
	m.pending[irq] = false
}

// SenseFalling implements uart.Interrupts. The pin must implement Wired.
func (m *Machine) SenseFalling(pin uart.Pin) {
	p, ok := pin.(Wired)
	if !ok {
		panic("sim: edge sensing requires a pin on a wire")
	}
	m.sense = p.Wired()
	m.lastSense = m.sense.Level()
}

// Enable implements uart.Interrupts.
func (m *Machine) Enable(irq uart.IRQ) {
	m.enabled[irq] = true
}

// Disable implements uart.Interrupts.
func (m *Machine) Disable(irq uart.IRQ) {
	m.enabled[irq] = false
}

// Enabled implements uart.Interrupts.
func (m *Machine) Enabled(irq uart.IRQ) bool {
	return m.enabled[irq]
}

// ClearPending implements uart.Interrupts.
func (m *Machine) ClearPending(irq uart.IRQ) {
	m.pending[irq] = false
}

// Armed reports whether irq is enabled, taking the lock.
func (m *Machine) Armed(irq uart.IRQ) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled[irq]
}

// Dispatched returns how many times the handler of irq ran.
func (m *Machine) Dispatched(irq uart.IRQ) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatched[irq]
}

// Now returns the absolute tick count since the machine was created.
func (m *Machine) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AddDevice adds devices stepped on every tick.
func (m *Machine) AddDevice(devices ...Device) {
	m.mu.Lock()
	m.devices = append(m.devices, devices...)
	m.mu.Unlock()
}

// Schedule drives w to high at the absolute tick at.
func (m *Machine) Schedule(w *Wire, at uint64, high bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := sort.Search(len(m.drives), func(i int) bool { return m.drives[i].at > at })
	m.drives = append(m.drives, drive{})
	copy(m.drives[n+1:], m.drives[n:])
	m.drives[n] = drive{at: at, wire: w, high: high}
}

// ScheduleFrame schedules an 8N1 frame of b on w starting at tick start,
// with a bit period of ticksPerBit, and returns the tick the stop bit ends.
func (m *Machine) ScheduleFrame(w *Wire, b byte, start uint64, ticksPerBit float64) uint64 {
	frame := uint16(b)<<1 | 1<<9
	for bit := uint(0); bit < 10; bit++ {
		m.Schedule(w, start+uint64(float64(bit)*ticksPerBit+0.5), frame>>bit&1 != 0)
	}
	return start + uint64(10*ticksPerBit+0.5)
}

// Probe starts recording the level transitions of w.
func (m *Machine) Probe(w *Wire) *Trace {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &Trace{wire: w, since: m.now, initial: w.Level()}
	t.last = t.initial
	m.probes = append(m.probes, t)
	return t
}

// Advance runs the machine for the given number of ticks.
func (m *Machine) Advance(ticks uint64) {
	for ; ticks > 0; ticks-- {
		m.mu.Lock()
		m.step()
		m.mu.Unlock()
	}
}

// AdvanceUntil runs the machine until cond holds, at most max ticks.
// cond is called without the lock.
func (m *Machine) AdvanceUntil(cond func() bool, max uint64) bool {
	for ; max > 0; max-- {
		if cond() {
			return true
		}
		m.Advance(1)
	}
	return cond()
}

// Run implements framework.Runnable: it is the line service task
// which keeps the timer counting until ctx is done.
func (m *Machine) Run(ctx context.Context) error {
	if m.Realtime {
		return m.runRealtime(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m.Advance(freeRunBatch)
		runtime.Gosched()
	}
}

func (m *Machine) runRealtime(ctx context.Context) error {
	ticker := time.NewTicker(realtimeSlice)
	defer ticker.Stop()
	last := time.Now()
	var owed float64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			owed += now.Sub(last).Seconds() * float64(m.tickRate)
			last = now
			n := uint64(owed)
			owed -= float64(n)
			m.Advance(n)
		}
	}
}

func (m *Machine) step() {
	m.now++
	for len(m.drives) > 0 && m.drives[0].at <= m.now {
		m.drives[0].wire.Drive(m.drives[0].high)
		m.drives = m.drives[1:]
	}
	for _, d := range m.devices {
		d.Step(m.now)
	}
	count := uint16(m.now)
	for _, irq := range []uart.IRQ{uart.IRQTransmit, uart.IRQReceive} {
		if m.compare[irq] == count {
			m.pending[irq] = true
		}
	}
	m.dispatch()
	for _, t := range m.probes {
		t.sample(m.now)
	}
}

func (m *Machine) dispatch() {
	for {
		m.senseEdge()
		irq := m.nextIRQ()
		if irq < 0 {
			return
		}
		m.pending[irq] = false
		m.dispatched[irq]++
		if h := m.handlers[irq]; h != nil {
			h()
		}
	}
}

func (m *Machine) senseEdge() {
	if m.sense == nil {
		return
	}
	level := m.sense.Level()
	if m.lastSense && !level {
		m.pending[uart.IRQEdge] = true
	}
	m.lastSense = level
}

func (m *Machine) nextIRQ() uart.IRQ {
	for irq := uart.IRQ(0); int(irq) < uart.NumIRQs; irq++ {
		if m.pending[irq] && m.enabled[irq] {
			return irq
		}
	}
	return -1
}
