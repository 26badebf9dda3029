package diag

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/softuart/pkg/framework"
	"github.com/robotalks/softuart/pkg/uart"
)

// Help lists the commands.
const Help = "? - Show help\n" +
	"s - Show statistics\n" +
	"t - Send test pattern\n" +
	"r - Reset counters\n\n"

// App is the application running in the loop on top of a port.
type App interface {
	fx.LoopAdder
	// Banner announces the port configuration on the line.
	Banner()
}

// Interpreter echoes received bytes and executes the single
// character commands. It handles at most one byte per iteration.
type Interpreter struct {
	Port       *uart.Port
	Debug      bool
	StatsEvery uint64
}

// NewInterpreter creates an Interpreter.
func NewInterpreter(port *uart.Port) *Interpreter {
	return &Interpreter{
		Port:       port,
		Debug:      defaultConfig.Debug,
		StatsEvery: defaultConfig.StatsEvery,
	}
}

// Banner implements App.
func (in *Interpreter) Banner() {
	sendBanner(in.Port)
	in.Port.EnqueueString("Type to test echo...\n\n")
}

func sendBanner(p *uart.Port) {
	p.EnqueueString(fmt.Sprintf("\n\nUART Initialized!\n"+
		"Tick rate: %d Hz\n"+
		"Baudrate: %d\n"+
		"Buffer size: %d bytes\n"+
		"Ticks per bit: %d\n"+
		"Ready for communication!\n",
		p.TickRate(), p.Baud(), p.BufferSize(), p.TicksPerBit()))
}

// AddToLoop implements LoopAdder.
func (in *Interpreter) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, in)
	loop.AddRunnable(fx.NamedRun("diag-wakeup", fx.RunFunc(func(ctx context.Context) error {
		return wakeOnReadable(ctx, in.Port)
	})))
}

// Control implements Controller.
func (in *Interpreter) Control(cc fx.ControlContext) error {
	if in.Debug && in.StatsEvery > 0 && cc.Iteration()%in.StatsEvery == 0 {
		in.Port.ReportStats()
	}
	b, ok := in.Port.Read()
	if !ok {
		return nil
	}
	in.Handle(b)
	if in.Port.Available() > 0 {
		cc.TriggerNext()
	}
	return nil
}

// Handle echoes b and runs the command it names, if any.
func (in *Interpreter) Handle(b byte) {
	p := in.Port
	if in.Debug {
		p.EnqueueString(fmt.Sprintf("[RX: '%s' (0x%x)] ", []byte{b}, b))
	}
	p.Enqueue(b)

	switch b {
	case '?':
		p.EnqueueString(Help)
	case 's':
		p.ReportStats()
	case 't':
		p.EnqueueString("\nTest\n")
	case 'r':
		p.ResetCounters()
		p.EnqueueString("\nCounters reset!\n")
	default:
		return
	}
	glog.V(1).Infof("diag: command %q", b)
}

// wakeOnReadable triggers the loop whenever the port stored a byte.
func wakeOnReadable(ctx context.Context, port *uart.Port) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-port.Readable():
			loopCtl.TriggerNext()
		}
	}
}
