package sim

import "sync"

// Transition is a level change of a wire at an absolute tick.
type Transition struct {
	Tick uint64
	High bool
}

// Trace records the transitions of a wire, sampled after the
// interrupts of each tick were dispatched.
type Trace struct {
	wire    *Wire
	since   uint64
	initial bool

	lock        sync.Mutex
	last        bool
	transitions []Transition
}

func (t *Trace) sample(now uint64) {
	level := t.wire.Level()
	if level == t.last {
		return
	}
	t.lock.Lock()
	t.transitions = append(t.transitions, Transition{Tick: now, High: level})
	t.last = level
	t.lock.Unlock()
}

// Transitions returns a copy of the recorded transitions.
func (t *Trace) Transitions() []Transition {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]Transition(nil), t.transitions...)
}

// LevelAt returns the recorded level at tick.
func (t *Trace) LevelAt(tick uint64) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	level := t.initial
	for _, tr := range t.transitions {
		if tr.Tick > tick {
			break
		}
		level = tr.High
	}
	return level
}

// FirstFall returns the tick of the first falling transition at or after tick.
func (t *Trace) FirstFall(tick uint64) (uint64, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	for _, tr := range t.transitions {
		if tr.Tick >= tick && !tr.High {
			return tr.Tick, true
		}
	}
	return 0, false
}
