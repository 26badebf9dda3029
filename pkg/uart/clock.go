package uart

import "fmt"

// BitClock derives the bit period from the timer tick rate and
// owns the pin setup.
type BitClock struct {
	hw          Hardware
	txPin       Pin
	rxPin       Pin
	baud        int
	ticksPerBit uint16
}

// maxTicksPerBit keeps 1.5 bit periods within the 16-bit compare register.
const maxTicksPerBit = 0xffff * 2 / 3

// Configure sets the transmit pin to idle-high output and the receive
// pin to pulled-up input, derives the bit period for baud and arms the
// falling edge interrupt. The compare interrupts are left to the engines.
func (c *BitClock) Configure(baud int) error {
	ticks, err := ticksFor(c.hw.TickRate(), baud)
	if err != nil {
		return err
	}

	c.txPin.ConfigureOutput()
	c.txPin.Set(true)
	c.rxPin.ConfigureInputPullUp()

	c.hw.Lock()
	defer c.hw.Unlock()
	c.baud, c.ticksPerBit = baud, ticks
	c.hw.SenseFalling(c.rxPin)
	c.hw.ClearPending(IRQEdge)
	c.hw.Enable(IRQEdge)
	return nil
}

// Baud returns the configured baud rate.
func (c *BitClock) Baud() int {
	return c.baud
}

// TicksPerBit returns the bit period in timer ticks.
func (c *BitClock) TicksPerBit() uint16 {
	return c.ticksPerBit
}

// FirstSample is the delay from a start edge to the middle of data bit 0.
func (c *BitClock) FirstSample() uint16 {
	return c.ticksPerBit + c.ticksPerBit/2
}

// ticksFor computes the bit period of baud without touching the hardware.
func ticksFor(tickRate uint32, baud int) (uint16, error) {
	if baud <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBaud, baud)
	}
	ticks := tickRate / uint32(baud)
	if ticks == 0 || ticks > maxTicksPerBit {
		return 0, fmt.Errorf("%w: %d baud is %d ticks per bit at %d Hz",
			ErrInvalidBaud, baud, ticks, tickRate)
	}
	return uint16(ticks), nil
}
