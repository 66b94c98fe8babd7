// Package common provides small shared utilities.
package common

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer measures the duration of a named pipeline stage. Time is read from
// an injected clock so stage timings stay deterministic under test.
type Timer struct {
	clock    clockwork.Clock
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer starts a timer for the given stage.
func NewTimer(clock clockwork.Clock, name string) *Timer {
	return &Timer{
		clock: clock,
		name:  name,
		start: clock.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = t.clock.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the stage name.
func (t *Timer) Name() string {
	return t.name
}

// String returns a formatted representation of the timer.
func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}
