package sim

import "github.com/robotalks/softuart/pkg/uart"

// Bench wires a machine for one port: TxWire carries what the port
// sends, RxWire what it receives. A Terminal may sit on the far end.
type Bench struct {
	Machine  *Machine
	TxWire   *Wire
	RxWire   *Wire
	TxPin    *Pin
	RxPin    *Pin
	Terminal *Terminal
}

// NewBench creates a bench with a terminal at terminalBaud on the far end.
func NewBench(tickRate uint32, terminalBaud int) *Bench {
	b := newBench(tickRate, NewWire(), NewWire())
	b.Terminal = NewTerminal(b.RxWire, b.TxWire, b.Machine.TickRate(), terminalBaud)
	b.Machine.AddDevice(b.Terminal)
	return b
}

// NewLoopback creates a bench whose transmit pin is wired to its
// receive pin.
func NewLoopback(tickRate uint32) *Bench {
	w := NewWire()
	return newBench(tickRate, w, w)
}

func newBench(tickRate uint32, tx, rx *Wire) *Bench {
	return &Bench{
		Machine: NewMachine(tickRate),
		TxWire:  tx,
		RxWire:  rx,
		TxPin:   NewPin(tx),
		RxPin:   NewPin(rx),
	}
}

// NewPort creates the port on the bench.
func (b *Bench) NewPort(conf uart.Config) (*uart.Port, error) {
	return uart.New(b.Machine, b.TxPin, b.RxPin, conf)
}
