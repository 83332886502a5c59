package engine

import "time"

// Clock abstracts timer scheduling so tests can drive the state machine with
// virtual time. Scheduled functions run on an arbitrary goroutine; the engine
// guards every callback with its generation counter.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return systemClock{} }
