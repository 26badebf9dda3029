package uart

// receiver assembles bytes from the receive pin. It is Idle while
// IRQEdge is enabled and Sampling while IRQReceive is enabled.
type receiver struct {
	hw    Hardware
	pin   Pin
	clock *BitClock
	ring  *RingBuffer
	stats *counters
	ready chan struct{}

	// accumulator fills from the top so that the LSB-first wire
	// order ends up in place after 8 samples.
	accumulator byte
	bitsSampled uint8
}

// onEdge is the IRQEdge handler: a start bit begins.
func (r *receiver) onEdge() {
	r.hw.Disable(IRQEdge)
	r.hw.SetCompare(IRQReceive, r.hw.Count()+r.clock.FirstSample())
	r.accumulator, r.bitsSampled = 0, 0
	r.stats.rxEdges++
	r.hw.ClearPending(IRQReceive)
	r.hw.Enable(IRQReceive)
}

// onCompare is the IRQReceive handler.
func (r *receiver) onCompare() {
	r.hw.SetCompare(IRQReceive, r.hw.Compare(IRQReceive)+r.clock.TicksPerBit())

	if r.bitsSampled < 8 {
		r.accumulator >>= 1
		if r.pin.Get() {
			r.accumulator |= 0x80
		}
		r.bitsSampled++
		return
	}

	// stop bit midpoint: no validation, store and rearm.
	r.hw.Disable(IRQReceive)
	if r.store(r.accumulator) == StatusDropped {
		r.stats.rxDropped++
	}
	r.stats.rxBytes++
	r.hw.ClearPending(IRQEdge)
	r.hw.Enable(IRQEdge)
}

func (r *receiver) store(b byte) Status {
	if !r.ring.put(b) {
		return StatusDropped
	}
	select {
	case r.ready <- struct{}{}:
	default:
	}
	return StatusOK
}
