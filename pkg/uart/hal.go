package uart

import "sync"

// IRQ identifies an interrupt source used by the port.
type IRQ int

// Interrupt sources.
const (
	IRQEdge     IRQ = iota // falling edge on the receive pin
	IRQTransmit            // timer compare channel driving the transmit pin
	IRQReceive             // timer compare channel sampling the receive pin

	NumIRQs int = iota
)

// String returns the IRQ name.
func (i IRQ) String() string {
	switch i {
	case IRQEdge:
		return "edge"
	case IRQTransmit:
		return "transmit"
	case IRQReceive:
		return "receive"
	default:
		return "unknown"
	}
}

// Pin is a GPIO pin.
type Pin interface {
	// ConfigureOutput configures the pin as a driven output.
	ConfigureOutput()
	// ConfigureInputPullUp configures the pin as an input with pull-up.
	ConfigureInputPullUp()
	// Set drives the pin high (true) or low (false).
	Set(high bool)
	// Get reads the pin level.
	Get() bool
}

// Timer is a free-running 16-bit counter with one compare register
// per compare IRQ.
//
// Except TickRate, methods must be called from an interrupt handler
// or inside the critical section.
type Timer interface {
	// TickRate is the number of counter ticks per second.
	TickRate() uint32
	// Count reads the counter.
	Count() uint16
	// Compare reads the compare register of irq.
	Compare(irq IRQ) uint16
	// SetCompare writes the compare register of irq.
	SetCompare(irq IRQ, at uint16)
}

// Interrupts controls interrupt sources. Lock and Unlock enter and
// leave the critical section, i.e. suppress and restore interrupts.
//
// Except Attach, methods other than Lock and Unlock must be called from
// an interrupt handler or inside the critical section.
type Interrupts interface {
	sync.Locker

	// Attach installs the handler of irq. It fails with ErrIRQInUse
	// if a handler is already installed.
	Attach(irq IRQ, handler func()) error
	// Detach removes the handler of irq and masks it.
	Detach(irq IRQ)
	// SenseFalling selects the pin whose falling edges raise IRQEdge.
	SenseFalling(pin Pin)
	// Enable unmasks irq.
	Enable(irq IRQ)
	// Disable masks irq. A masked source still latches its pending flag.
	Disable(irq IRQ)
	// Enabled reports whether irq is unmasked.
	Enabled(irq IRQ) bool
	// ClearPending drops a latched event of irq.
	ClearPending(irq IRQ)
}

// Hardware is everything the port needs from the platform besides pins.
type Hardware interface {
	Timer
	Interrupts
}
