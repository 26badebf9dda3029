package uart

import "sync"

// RingBuffer is a fixed capacity single-producer single-consumer
// byte queue. One slot is kept free so head == tail always means
// empty: a buffer of size N holds at most N-1 bytes.
//
// Put, Get and Count enter the critical section. Interrupt handlers,
// which already run with interrupts masked, use put, get and count.
type RingBuffer struct {
	cs   sync.Locker
	buf  []byte
	head int // advanced by the producer only
	tail int // advanced by the consumer only
}

// NewRingBuffer creates a buffer of size slots guarded by cs.
// A nil cs gets a private mutex.
func NewRingBuffer(size int, cs sync.Locker) *RingBuffer {
	if size < 2 {
		panic("ring buffer needs at least 2 slots")
	}
	if cs == nil {
		cs = &sync.Mutex{}
	}
	return &RingBuffer{cs: cs, buf: make([]byte, size)}
}

// Size returns the number of slots.
func (r *RingBuffer) Size() int {
	return len(r.buf)
}

// Cap returns the number of bytes the buffer can hold.
func (r *RingBuffer) Cap() int {
	return len(r.buf) - 1
}

// Put appends b. It returns false and leaves the buffer untouched if full.
func (r *RingBuffer) Put(b byte) bool {
	r.cs.Lock()
	defer r.cs.Unlock()
	return r.put(b)
}

// Get removes the oldest byte. ok is false if the buffer is empty.
func (r *RingBuffer) Get() (b byte, ok bool) {
	r.cs.Lock()
	defer r.cs.Unlock()
	return r.get()
}

// Count returns the number of buffered bytes.
func (r *RingBuffer) Count() int {
	r.cs.Lock()
	defer r.cs.Unlock()
	return r.count()
}

func (r *RingBuffer) put(b byte) bool {
	next := (r.head + 1) % len(r.buf)
	if next == r.tail {
		return false
	}
	r.buf[r.head] = b
	r.head = next
	return true
}

func (r *RingBuffer) get() (byte, bool) {
	if r.head == r.tail {
		return 0, false
	}
	b := r.buf[r.tail]
	r.tail = (r.tail + 1) % len(r.buf)
	return b, true
}

func (r *RingBuffer) count() int {
	return (r.head - r.tail + len(r.buf)) % len(r.buf)
}
