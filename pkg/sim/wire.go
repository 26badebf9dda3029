package sim

import (
	"sync/atomic"

	"github.com/robotalks/softuart/pkg/uart"
)

// Wire is a digital line. An undriven wire is pulled up, the idle
// (mark) level of a serial line.
type Wire struct {
	level int32
}

// NewWire creates a wire at high level.
func NewWire() *Wire {
	return &Wire{level: 1}
}

// Level reads the wire.
func (w *Wire) Level() bool {
	return atomic.LoadInt32(&w.level) != 0
}

// Drive sets the wire level.
func (w *Wire) Drive(high bool) {
	var v int32
	if high {
		v = 1
	}
	atomic.StoreInt32(&w.level, v)
}

// PinMode is the configured direction of a Pin.
type PinMode int32

// Pin modes.
const (
	PinUnconfigured PinMode = iota
	PinOutput
	PinInputPullUp
)

// Pin is a GPIO pin attached to a Wire. It implements uart.Pin.
type Pin struct {
	Wire *Wire
	mode int32
}

var _ uart.Pin = (*Pin)(nil)

// NewPin creates a pin on w.
func NewPin(w *Wire) *Pin {
	return &Pin{Wire: w}
}

// Mode returns the configured mode.
func (p *Pin) Mode() PinMode {
	return PinMode(atomic.LoadInt32(&p.mode))
}

// ConfigureOutput implements uart.Pin.
func (p *Pin) ConfigureOutput() {
	atomic.StoreInt32(&p.mode, int32(PinOutput))
}

// ConfigureInputPullUp implements uart.Pin.
func (p *Pin) ConfigureInputPullUp() {
	atomic.StoreInt32(&p.mode, int32(PinInputPullUp))
}

// Set implements uart.Pin. Only an output pin drives its wire.
func (p *Pin) Set(high bool) {
	if p.Mode() == PinOutput {
		p.Wire.Drive(high)
	}
}

// Get implements uart.Pin.
func (p *Pin) Get() bool {
	return p.Wire.Level()
}

// Wired is implemented by pins attached to a Wire.
type Wired interface {
	Wired() *Wire
}

// Wired implements Wired.
func (p *Pin) Wired() *Wire {
	return p.Wire
}
