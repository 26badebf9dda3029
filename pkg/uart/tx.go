package uart

// stopBit marks the stop bit of a frame shifted left past the start bit.
const stopBit uint16 = 1 << 9

// transmitter shifts frames out on the transmit compare interrupt.
// It is Framing while IRQTransmit is enabled and Idle otherwise.
type transmitter struct {
	hw    Hardware
	pin   Pin
	clock *BitClock
	ring  *RingBuffer
	stats *counters
	space chan struct{}

	// frame holds the bits still to emit, least significant first.
	frame         uint16
	bitsRemaining uint8
}

// kick starts framing if idle. Called inside the critical section
// after a byte was put into the ring.
func (t *transmitter) kick() {
	if t.hw.Enabled(IRQTransmit) {
		return
	}
	t.hw.SetCompare(IRQTransmit, t.hw.Count()+t.clock.TicksPerBit())
	t.hw.ClearPending(IRQTransmit)
	t.hw.Enable(IRQTransmit)
}

// idle reports whether nothing is in flight or queued.
func (t *transmitter) idle() bool {
	return !t.hw.Enabled(IRQTransmit) && t.bitsRemaining == 0 && t.ring.count() == 0
}

// onCompare is the IRQTransmit handler.
func (t *transmitter) onCompare() {
	t.hw.SetCompare(IRQTransmit, t.hw.Compare(IRQTransmit)+t.clock.TicksPerBit())

	if t.bitsRemaining > 0 {
		t.pin.Set(t.frame&1 != 0)
		t.frame >>= 1
		t.bitsRemaining--
		return
	}

	b, ok := t.ring.get()
	if !ok {
		t.hw.Disable(IRQTransmit)
		t.pin.Set(true)
		return
	}
	t.frame = uint16(b)<<1 | stopBit
	// start bit goes out with this event.
	t.pin.Set(false)
	t.frame >>= 1
	t.bitsRemaining = 9
	t.stats.txBytes++

	select {
	case t.space <- struct{}{}:
	default:
	}
}
