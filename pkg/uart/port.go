package uart

import (
	"fmt"

	"github.com/golang/glog"
)

// Defaults.
const (
	DefaultBaud       = 9600
	DefaultBufferSize = 64
)

// Config is the port configuration, fixed for the lifetime of the port.
type Config struct {
	Baud int
	// BufferSize is the number of slots of each ring buffer.
	// A buffer holds at most BufferSize-1 bytes.
	BufferSize int
}

// Port is a software UART owning one timer, one edge interrupt and
// two pins. Only one Port may be created per Hardware.
type Port struct {
	hw    Hardware
	clock BitClock
	tx    transmitter
	rx    receiver
	stats counters

	txRing  *RingBuffer
	rxRing  *RingBuffer
	txSpace chan struct{}
	rxReady chan struct{}
}

// New attaches the interrupt handlers, configures the pins and arms
// reception.
func New(hw Hardware, txPin, rxPin Pin, conf Config) (*Port, error) {
	if conf.Baud == 0 {
		conf.Baud = DefaultBaud
	}
	if conf.BufferSize == 0 {
		conf.BufferSize = DefaultBufferSize
	}
	if conf.BufferSize < 2 {
		return nil, fmt.Errorf("%w: buffer size %d", ErrInvalidConfig, conf.BufferSize)
	}
	if _, err := ticksFor(hw.TickRate(), conf.Baud); err != nil {
		return nil, err
	}

	p := &Port{
		hw:      hw,
		txRing:  NewRingBuffer(conf.BufferSize, hw),
		rxRing:  NewRingBuffer(conf.BufferSize, hw),
		txSpace: make(chan struct{}, 1),
		rxReady: make(chan struct{}, 1),
	}
	p.clock = BitClock{hw: hw, txPin: txPin, rxPin: rxPin}
	p.tx = transmitter{
		hw:    hw,
		pin:   txPin,
		clock: &p.clock,
		ring:  p.txRing,
		stats: &p.stats,
		space: p.txSpace,
	}
	p.rx = receiver{
		hw:    hw,
		pin:   rxPin,
		clock: &p.clock,
		ring:  p.rxRing,
		stats: &p.stats,
		ready: p.rxReady,
	}

	handlers := []struct {
		irq IRQ
		fn  func()
	}{
		{IRQEdge, p.rx.onEdge},
		{IRQTransmit, p.tx.onCompare},
		{IRQReceive, p.rx.onCompare},
	}
	for i, h := range handlers {
		if err := hw.Attach(h.irq, h.fn); err != nil {
			for _, attached := range handlers[:i] {
				hw.Detach(attached.irq)
			}
			return nil, fmt.Errorf("attach %s: %w", h.irq, err)
		}
	}
	if err := p.clock.Configure(conf.Baud); err != nil {
		for _, h := range handlers {
			hw.Detach(h.irq)
		}
		return nil, err
	}
	glog.Infof("uart: %d baud, %d ticks per bit, %d byte buffers",
		conf.Baud, p.clock.TicksPerBit(), conf.BufferSize)
	return p, nil
}

// Baud returns the configured baud rate.
func (p *Port) Baud() int {
	return p.clock.Baud()
}

// TickRate returns the timer ticks per second.
func (p *Port) TickRate() uint32 {
	return p.hw.TickRate()
}

// TicksPerBit returns the bit period in timer ticks.
func (p *Port) TicksPerBit() uint16 {
	return p.clock.TicksPerBit()
}

// BufferSize returns the number of slots per ring buffer.
func (p *Port) BufferSize() int {
	return p.txRing.Size()
}

// TryEnqueue queues b for transmission without waiting.
func (p *Port) TryEnqueue(b byte) Status {
	p.hw.Lock()
	defer p.hw.Unlock()
	if !p.txRing.put(b) {
		return StatusBufferFull
	}
	p.tx.kick()
	return StatusOK
}

// Enqueue queues b for transmission, waiting as long as it takes for
// the transmit interrupt to free a slot. There is no timeout: if the
// line service is stalled, Enqueue never returns.
func (p *Port) Enqueue(b byte) {
	for p.TryEnqueue(b) != StatusOK {
		<-p.txSpace
	}
}

// EnqueueString enqueues every byte of s in order.
func (p *Port) EnqueueString(s string) {
	for i := 0; i < len(s); i++ {
		p.Enqueue(s[i])
	}
}

// Write implements io.Writer on top of Enqueue. It never fails.
func (p *Port) Write(data []byte) (int, error) {
	for _, b := range data {
		p.Enqueue(b)
	}
	return len(data), nil
}

// Available returns the number of received bytes waiting.
func (p *Port) Available() int {
	return p.rxRing.Count()
}

// Read takes the oldest received byte. ok is false if none is waiting.
func (p *Port) Read() (b byte, ok bool) {
	return p.rxRing.Get()
}

// ReadSnapshot drains the bytes available at the moment of the call
// into buf, followed by a zero terminator, and reports whether anything
// was drained. It keeps one byte of buf for the terminator, so at most
// len(buf)-1 bytes are taken; the rest stay buffered. Bytes arriving
// during the drain may be included, a logical message may be split
// across calls.
func (p *Port) ReadSnapshot(buf []byte) (int, bool) {
	if len(buf) == 0 || p.Available() == 0 {
		return 0, false
	}
	n := 0
	for n < len(buf)-1 && p.Available() > 0 {
		b, ok := p.Read()
		if !ok {
			break
		}
		buf[n] = b
		n++
	}
	buf[n] = 0
	return n, n > 0
}

// Readable is signaled by the receive interrupt when a byte was stored.
// The signal is coalesced, the receiver should drain with Read.
func (p *Port) Readable() <-chan struct{} {
	return p.rxReady
}

// TxIdle reports whether the transmitter has nothing queued or in flight.
func (p *Port) TxIdle() bool {
	p.hw.Lock()
	defer p.hw.Unlock()
	return p.tx.idle()
}

// Stats takes a consistent snapshot of the counters.
func (p *Port) Stats() Stats {
	p.hw.Lock()
	defer p.hw.Unlock()
	return Stats{
		TxBytes:   p.stats.txBytes,
		RxBytes:   p.stats.rxBytes,
		RxEdges:   p.stats.rxEdges,
		RxDropped: p.stats.rxDropped,
		Available: p.rxRing.count(),
	}
}

// ReportStats transmits the counters as text.
func (p *Port) ReportStats() {
	p.EnqueueString(p.Stats().Report())
}

// ResetCounters zeroes all counters at once.
func (p *Port) ResetCounters() {
	p.hw.Lock()
	p.stats = counters{}
	p.hw.Unlock()
	glog.V(1).Info("uart: counters reset")
}
