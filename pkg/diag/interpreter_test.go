package diag

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/softuart/pkg/framework"
	"github.com/robotalks/softuart/pkg/sim"
	"github.com/robotalks/softuart/pkg/uart"
)

const frameTicks = 10 * 208

type testBench struct {
	*sim.Bench
	t    *testing.T
	port *uart.Port
}

func newTestBench(t *testing.T) *testBench {
	b := sim.NewBench(sim.DefaultTickRate, 9600)
	p, err := b.NewPort(uart.Config{BufferSize: 256})
	require.NoError(t, err)
	return &testBench{Bench: b, t: t, port: p}
}

// flush runs the machine until everything queued went out.
func (b *testBench) flush() string {
	require.True(b.t, b.Machine.AdvanceUntil(b.port.TxIdle, 300*frameTicks))
	b.Machine.Advance(frameTicks)
	return string(b.Terminal.Received())
}

// receive makes the terminal send s and waits until the port has it.
func (b *testBench) receive(s string) {
	_, err := b.Terminal.Write([]byte(s))
	require.NoError(b.t, err)
	require.True(b.t, b.Machine.AdvanceUntil(func() bool {
		return b.port.Available() >= len(s)
	}, uint64(len(s)+2)*frameTicks))
}

func TestHandleEcho(t *testing.T) {
	b := newTestBench(t)
	in := NewInterpreter(b.port)
	in.Debug = false
	in.Handle('x')
	require.Equal(t, "x", b.flush())
}

func TestHandleDebugAnnotation(t *testing.T) {
	b := newTestBench(t)
	in := NewInterpreter(b.port)
	in.Debug = true
	in.Handle('A')
	in.Handle(0xb5)
	require.Equal(t, "[RX: 'A' (0x41)] A[RX: '\xb5' (0xb5)] \xb5", b.flush())
}

func TestHandleCommands(t *testing.T) {
	cases := []struct {
		cmd    byte
		output string
	}{
		{'?', "?" + Help},
		{'t', "t\nTest\n"},
		{'s', "s" + uart.Stats{}.Report()},
	}
	for _, c := range cases {
		t.Run(string(c.cmd), func(t *testing.T) {
			b := newTestBench(t)
			in := NewInterpreter(b.port)
			in.Debug = false
			in.Handle(c.cmd)
			require.Equal(t, c.output, b.flush())
		})
	}
}

func TestHandleReset(t *testing.T) {
	b := newTestBench(t)
	in := NewInterpreter(b.port)
	in.Debug = false

	b.receive("xyz")
	for i := 0; i < 3; i++ {
		_, ok := b.port.Read()
		require.True(t, ok)
	}
	b.port.EnqueueString("hello")
	require.Equal(t, "hello", b.flush())
	st := b.port.Stats()
	require.Equal(t, uint32(5), st.TxBytes)
	require.Equal(t, uint32(3), st.RxBytes)

	in.Handle('r')
	require.Equal(t, uart.Stats{}, b.port.Stats())
	require.Equal(t, "r\nCounters reset!\n", b.flush())
}

func TestControlOneBytePerIteration(t *testing.T) {
	b := newTestBench(t)
	in := NewInterpreter(b.port)
	in.Debug = false
	in.StatsEvery = 0
	loop := fx.NewLoop()
	loop.AddController(fx.PrLvControl, in)

	b.receive("ab")
	loop.RunIteration(context.Background())
	require.Equal(t, 1, b.port.Available())
	loop.RunIteration(context.Background())
	require.Zero(t, b.port.Available())
	loop.RunIteration(context.Background())
	require.Equal(t, "ab", b.flush())
}

func TestControlPeriodicStats(t *testing.T) {
	b := newTestBench(t)
	in := NewInterpreter(b.port)
	in.Debug = true
	in.StatsEvery = 3
	loop := fx.NewLoop()
	loop.AddController(fx.PrLvControl, in)

	loop.RunIteration(context.Background())
	loop.RunIteration(context.Background())
	require.True(t, b.port.TxIdle())
	loop.RunIteration(context.Background())
	require.False(t, b.port.TxIdle())
	require.Equal(t, uart.Stats{}.Report(), b.flush())
}

func TestBanner(t *testing.T) {
	b := newTestBench(t)
	NewInterpreter(b.port).Banner()
	out := b.flush()
	require.True(t, strings.HasPrefix(out, "\n\nUART Initialized!\n"))
	require.Contains(t, out, "Tick rate: 2000000 Hz\n")
	require.Contains(t, out, "Baudrate: 9600\n")
	require.Contains(t, out, "Buffer size: 256 bytes\n")
	require.Contains(t, out, "Ticks per bit: 208\n")
	require.True(t, strings.HasSuffix(out, "Ready for communication!\nType to test echo...\n\n"))
}

func TestInterpreterRunning(t *testing.T) {
	b := newTestBench(t)
	in := NewInterpreter(b.port)
	in.StatsEvery = 0
	loop := fx.NewLoop()
	loop.Interval = time.Hour
	loop.Add(in)

	ctx, cancel := context.WithCancel(context.Background())
	runner := fx.NewRunnerWith(ctx).Go(b.Machine, loop)
	defer func() {
		cancel()
		require.NoError(t, runner.Wait())
	}()

	_, err := b.Terminal.Write([]byte("t"))
	require.NoError(t, err)

	expected := "[RX: 't' (0x74)] t\nTest\n"
	got := make(chan string, 1)
	go func() {
		var out []byte
		buf := make([]byte, 64)
		for len(out) < len(expected) {
			n, err := b.Terminal.Read(buf)
			if err != nil {
				break
			}
			out = append(out, buf[:n]...)
		}
		got <- string(out)
	}()
	select {
	case out := <-got:
		require.Equal(t, expected, out)
	case <-time.After(5 * time.Second):
		t.Fatal("no response from the interpreter")
	}
	b.Terminal.Close()
}
