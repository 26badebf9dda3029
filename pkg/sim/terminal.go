package sim

import (
	"io"
	"sync"
)

const terminalReadBuffer = 4096

// TerminalStats are the counters of a Terminal.
type TerminalStats struct {
	Sent          uint64
	Received      uint64
	FramingErrors uint64
	Overruns      uint64
}

// Terminal is the far end of the serial line: a conventional 8N1 UART
// clocked from the machine, e.g. the USB serial adapter of a PC. It
// validates stop bits, which the software port doesn't.
//
// Terminal implements io.ReadWriteCloser. Write never blocks. Read
// blocks until at least one byte arrived or the terminal is closed.
type Terminal struct {
	tx          *Wire // driven by the terminal
	rx          *Wire // sampled by the terminal
	ticksPerBit float64

	lock       sync.Mutex
	queue      []byte
	sending    bool
	frame      uint16
	frameStart uint64

	receiving bool
	lastLevel bool
	rxStart   uint64
	rxBits    int
	rxAcc     byte
	stats     TerminalStats

	readCh    chan byte
	closeOnce sync.Once
	closed    chan struct{}
}

// NewTerminal creates a terminal transmitting on tx and receiving on rx
// at baud, for a machine counting tickRate ticks per second.
func NewTerminal(tx, rx *Wire, tickRate uint32, baud int) *Terminal {
	return &Terminal{
		tx:          tx,
		rx:          rx,
		ticksPerBit: float64(tickRate) / float64(baud),
		lastLevel:   rx.Level(),
		readCh:      make(chan byte, terminalReadBuffer),
		closed:      make(chan struct{}),
	}
}

// Step implements Device.
func (t *Terminal) Step(now uint64) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.stepTx(now)
	t.stepRx(now)
}

func (t *Terminal) stepTx(now uint64) {
	for {
		if !t.sending {
			if len(t.queue) == 0 {
				return
			}
			t.frame = uint16(t.queue[0])<<1 | 1<<9
			t.queue = t.queue[1:]
			t.sending, t.frameStart = true, now
		}
		bit := uint(float64(now-t.frameStart) / t.ticksPerBit)
		if bit < 10 {
			t.tx.Drive(t.frame>>bit&1 != 0)
			return
		}
		t.sending = false
		t.stats.Sent++
		t.tx.Drive(true)
	}
}

func (t *Terminal) stepRx(now uint64) {
	level := t.rx.Level()
	falling := t.lastLevel && !level
	t.lastLevel = level
	if !t.receiving {
		if falling {
			t.receiving, t.rxStart, t.rxBits, t.rxAcc = true, now, 0, 0
		}
		return
	}
	if float64(now-t.rxStart) < t.ticksPerBit*(1.5+float64(t.rxBits)) {
		return
	}
	if t.rxBits < 8 {
		t.rxAcc >>= 1
		if level {
			t.rxAcc |= 0x80
		}
		t.rxBits++
		return
	}
	t.receiving = false
	if !level {
		t.stats.FramingErrors++
		return
	}
	t.stats.Received++
	select {
	case t.readCh <- t.rxAcc:
	default:
		t.stats.Overruns++
	}
}

// Write queues p for transmission.
func (t *Terminal) Write(p []byte) (int, error) {
	select {
	case <-t.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	t.lock.Lock()
	t.queue = append(t.queue, p...)
	t.lock.Unlock()
	return len(p), nil
}

// Read returns received bytes.
func (t *Terminal) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	select {
	case p[0] = <-t.readCh:
	default:
		select {
		case p[0] = <-t.readCh:
		case <-t.closed:
			return 0, io.EOF
		}
	}
	n := 1
	for ; n < len(p); n++ {
		select {
		case p[n] = <-t.readCh:
		default:
			return n, nil
		}
	}
	return n, nil
}

// Received drains the bytes received so far without blocking.
func (t *Terminal) Received() []byte {
	var out []byte
	for {
		select {
		case b := <-t.readCh:
			out = append(out, b)
		default:
			return out
		}
	}
}

// Close unblocks readers and rejects further writes.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

// Idle reports whether nothing is queued or being sent.
func (t *Terminal) Idle() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return !t.sending && len(t.queue) == 0
}

// Stats returns the terminal counters.
func (t *Terminal) Stats() TerminalStats {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.stats
}
