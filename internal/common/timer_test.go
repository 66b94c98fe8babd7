package common

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestTimerMeasuresElapsedTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(clock, "detect")

	clock.Advance(250 * time.Millisecond)
	elapsed := timer.Stop()

	assert.Equal(t, 250*time.Millisecond, elapsed)
	assert.Equal(t, 250*time.Millisecond, timer.Duration())
	assert.Equal(t, "detect", timer.Name())
}

func TestTimerString(t *testing.T) {
	clock := clockwork.NewFakeClock()

	named := NewTimer(clock, "classify")
	clock.Advance(time.Second)
	named.Stop()
	assert.Equal(t, "classify: 1s", named.String())

	unnamed := NewTimer(clock, "")
	clock.Advance(2 * time.Second)
	unnamed.Stop()
	assert.Equal(t, "2s", unnamed.String())
}
