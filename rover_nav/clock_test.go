package rover_nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockSince(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)

	assert.GreaterOrEqual(t, clock.Since(past), time.Second)
}

func TestMockClockAdvanceAndSleep(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Advance(time.Second)
	assert.Equal(t, start.Add(time.Second), clock.Now())

	clock.Sleep(250 * time.Millisecond)
	clock.Sleep(250 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), clock.Now())
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, clock.Sleeps())
	assert.Equal(t, 1500*time.Millisecond, clock.Since(start))
}
