package rover_nav

import (
	"fmt"
	"time"
)

// MarkerDecision is the lap machine's verdict on an all-on-line reading.
type MarkerDecision int

const (
	// MarkerIgnored means the reading came too soon after the last reset.
	MarkerIgnored MarkerDecision = iota + 1
	// MarkerFarEnd means the outbound leg is over; turn around.
	MarkerFarEnd
	// MarkerHome means the return leg is over; stop for good.
	MarkerHome
	// MarkerAfterFinish means the mission already ended.
	MarkerAfterFinish
)

func (d MarkerDecision) String() string {
	switch d {
	case MarkerIgnored:
		return "IGNORED"
	case MarkerFarEnd:
		return "FAR_END"
	case MarkerHome:
		return "HOME"
	case MarkerAfterFinish:
		return "AFTER_FINISH"
	default:
		return fmt.Sprintf("MarkerDecision(%d)", int(d))
	}
}

// LapStageMachine tracks the active leg and the stage timer that gates marker
// detection.
type LapStageMachine struct {
	MinLeg time.Duration

	stage      Stage
	timerStart time.Time
	legStarts  map[Stage]time.Time
	legTimes   map[Stage]time.Duration
	ignored    int
}

// NewLapStageMachine starts in OUTBOUND with the timer reset at now.
func NewLapStageMachine(minLeg time.Duration, now time.Time) *LapStageMachine {
	return &LapStageMachine{
		MinLeg:     minLeg,
		stage:      StageOutbound,
		timerStart: now,
		legStarts:  map[Stage]time.Time{StageOutbound: now},
		legTimes:   map[Stage]time.Duration{},
	}
}

// Stage returns the active stage.
func (l *LapStageMachine) Stage() Stage {
	return l.stage
}

// Finished reports whether the terminal stage was reached.
func (l *LapStageMachine) Finished() bool {
	return l.stage == StageFinished
}

// ResetTimer restarts the suppression window at now.
func (l *LapStageMachine) ResetTimer(now time.Time) {
	l.timerStart = now
}

// TimerStart returns when the stage timer was last reset.
func (l *LapStageMachine) TimerStart() time.Time {
	return l.timerStart
}

// Elapsed returns the time since the last timer reset.
func (l *LapStageMachine) Elapsed(now time.Time) time.Duration {
	return now.Sub(l.timerStart)
}

// Armed reports whether a marker seen at now would be trusted.
func (l *LapStageMachine) Armed(now time.Time) bool {
	return l.Elapsed(now) > l.MinLeg
}

// OnMarker evaluates an all-on-line reading seen at now.
//
// Readings inside the suppression window change nothing, not even the timer.
// A trusted reading on the outbound leg moves to RETURNING and resets the
// timer; on the return leg it moves to FINISHED.
func (l *LapStageMachine) OnMarker(now time.Time) MarkerDecision {
	if l.stage == StageFinished {
		return MarkerAfterFinish
	}
	if !l.Armed(now) {
		l.ignored++
		return MarkerIgnored
	}
	switch l.stage {
	case StageOutbound:
		l.enter(StageReturning, now)
		l.timerStart = now
		return MarkerFarEnd
	default:
		l.enter(StageFinished, now)
		return MarkerHome
	}
}

// Finish forces the terminal stage, e.g. on an emergency stop.
func (l *LapStageMachine) Finish(now time.Time) {
	if l.stage != StageFinished {
		l.enter(StageFinished, now)
	}
}

// IgnoredMarkers returns how many marker readings were suppressed.
func (l *LapStageMachine) IgnoredMarkers() int {
	return l.ignored
}

// LegDuration returns how long a completed leg took.
func (l *LapStageMachine) LegDuration(s Stage) time.Duration {
	return l.legTimes[s]
}

func (l *LapStageMachine) enter(next Stage, now time.Time) {
	l.legTimes[l.stage] = now.Sub(l.legStarts[l.stage])
	l.stage = next
	l.legStarts[next] = now
}
