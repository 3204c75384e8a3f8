package rover_nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lapT0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

const minLeg = 19500 * time.Millisecond

func TestLapStageMachineSuppressesEarlyMarker(t *testing.T) {
	l := NewLapStageMachine(minLeg, lapT0)

	assert.Equal(t, MarkerIgnored, l.OnMarker(lapT0.Add(5000*time.Millisecond)))
	assert.Equal(t, StageOutbound, l.Stage())
	assert.Equal(t, lapT0, l.TimerStart(), "an ignored marker does not reset the timer")
	assert.Equal(t, 1, l.IgnoredMarkers())
}

func TestLapStageMachineBoundaryIsExclusive(t *testing.T) {
	l := NewLapStageMachine(minLeg, lapT0)

	assert.Equal(t, MarkerIgnored, l.OnMarker(lapT0.Add(minLeg)))
	assert.Equal(t, StageOutbound, l.Stage())
	assert.Equal(t, MarkerFarEnd, l.OnMarker(lapT0.Add(minLeg+time.Millisecond)))
}

func TestLapStageMachineFarEnd(t *testing.T) {
	l := NewLapStageMachine(minLeg, lapT0)
	at := lapT0.Add(20 * time.Second)

	assert.Equal(t, MarkerFarEnd, l.OnMarker(at))
	assert.Equal(t, StageReturning, l.Stage())
	assert.Equal(t, at, l.TimerStart())
	assert.Equal(t, 20*time.Second, l.LegDuration(StageOutbound))
}

func TestLapStageMachineNoSkipping(t *testing.T) {
	l := NewLapStageMachine(minLeg, lapT0)

	// The first trusted marker is always the far end.
	first := l.OnMarker(lapT0.Add(time.Hour))
	require.Equal(t, MarkerFarEnd, first)

	// The return leg has its own suppression window.
	assert.Equal(t, MarkerIgnored, l.OnMarker(lapT0.Add(time.Hour+time.Second)))
	assert.Equal(t, StageReturning, l.Stage())

	assert.Equal(t, MarkerHome, l.OnMarker(lapT0.Add(time.Hour+minLeg+time.Second)))
	assert.Equal(t, StageFinished, l.Stage())
	assert.True(t, l.Finished())
}

func TestLapStageMachineFinishedIsAbsorbing(t *testing.T) {
	l := NewLapStageMachine(minLeg, lapT0)
	l.Finish(lapT0)

	for i := 1; i <= 5; i++ {
		assert.Equal(t, MarkerAfterFinish, l.OnMarker(lapT0.Add(time.Duration(i)*time.Hour)))
		assert.Equal(t, StageFinished, l.Stage())
	}
}

func TestLapStageMachineNoiseIsIdempotent(t *testing.T) {
	l := NewLapStageMachine(minLeg, lapT0)
	for at := time.Duration(0); at <= minLeg; at += 250 * time.Millisecond {
		require.Equal(t, MarkerIgnored, l.OnMarker(lapT0.Add(at)), "at %s", at)
	}
	assert.Equal(t, StageOutbound, l.Stage())
	assert.Equal(t, lapT0, l.TimerStart())
}

func TestLapStageMachineResetTimer(t *testing.T) {
	l := NewLapStageMachine(minLeg, lapT0)
	later := lapT0.Add(10 * time.Second)
	l.ResetTimer(later)

	assert.False(t, l.Armed(lapT0.Add(25*time.Second)))
	assert.True(t, l.Armed(lapT0.Add(30*time.Second)))
	assert.Equal(t, 5*time.Second, l.Elapsed(lapT0.Add(15*time.Second)))
}
