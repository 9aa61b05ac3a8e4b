package utils

import "time"

// Timer measures elapsed wall-clock time from its start.
type Timer struct {
	startTime time.Time
	stopped   time.Duration
	done      bool
}

// NewTimer creates a Timer that starts immediately.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop freezes the measurement and returns it. Later calls return the same
// value.
func (t *Timer) Stop() time.Duration {
	if !t.done {
		t.stopped = time.Since(t.startTime)
		t.done = true
	}
	return t.stopped
}

// Elapsed returns the running time, or the frozen value once stopped.
func (t *Timer) Elapsed() time.Duration {
	if t.done {
		return t.stopped
	}
	return time.Since(t.startTime)
}
