package diag

import (
	"context"

	fx "github.com/robotalks/softuart/pkg/framework"
	"github.com/robotalks/softuart/pkg/uart"
)

// Echo sends back whatever was buffered at the moment of each
// iteration, without interpreting it.
type Echo struct {
	Port *uart.Port
	buf  []byte
}

// NewEcho creates an Echo with a snapshot buffer as large as the
// receive buffer.
func NewEcho(port *uart.Port) *Echo {
	return &Echo{Port: port, buf: make([]byte, port.BufferSize())}
}

// Banner implements App.
func (e *Echo) Banner() {
	sendBanner(e.Port)
}

// AddToLoop implements LoopAdder.
func (e *Echo) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, e)
	loop.AddRunnable(fx.NamedRun("echo-wakeup", fx.RunFunc(func(ctx context.Context) error {
		return wakeOnReadable(ctx, e.Port)
	})))
}

// Control implements Controller.
func (e *Echo) Control(cc fx.ControlContext) error {
	if n, ok := e.Port.ReadSnapshot(e.buf); ok {
		e.Port.Write(e.buf[:n])
	}
	return nil
}
