package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable is a long running task, e.g. the line service of a port.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Controller is invoked once per loop iteration in the application task.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// LoopControl exposes access to the running loop.
type LoopControl interface {
	// TriggerNext schedules the next iteration right after
	// the current one instead of waiting for the interval.
	TriggerNext()
}

// ControlContext is the context of one loop iteration.
type ControlContext interface {
	// Context retrieves context.Context.
	Context() context.Context
	// Time is when the iteration started.
	Time() time.Time
	// Iteration counts iterations from 1.
	Iteration() uint64

	LoopControl
}

// PriorityLevels is the number of controller priority levels.
const PriorityLevels int = 4

// Priority levels, lower runs first.
const (
	PrLvTop int = iota
	PrLvControl
	PrLvPostProc
	PrLvIdle
)
