package rover_nav

import (
	"fmt"
	"strings"
	"time"
)

// TimingConfig holds the calibrated durations of every timed behaviour.
type TimingConfig struct {
	Turn90         Duration `json:"turn_90"`
	Turn180        Duration `json:"turn_180"`
	Lateral        Duration `json:"lateral"`
	PassThrough    Duration `json:"pass_through"`
	Pause          Duration `json:"pause"`
	StartupCreep   Duration `json:"startup_creep"`
	PostUTurnCreep Duration `json:"post_uturn_creep"`
	PostUTurnDwell Duration `json:"post_uturn_dwell"`
	MinLeg         Duration `json:"min_leg"`
}

// PostUTurn selects what the robot does between the end of the spin and the
// start of the return leg.
type PostUTurn int

const (
	// PostUTurnCreep drives forward blind to clear the marker.
	PostUTurnCreep PostUTurn = iota + 1
	// PostUTurnDwell stands still for a fixed time.
	PostUTurnDwell
)

func (p PostUTurn) String() string {
	switch p {
	case PostUTurnCreep:
		return "creep"
	case PostUTurnDwell:
		return "dwell"
	default:
		return fmt.Sprintf("PostUTurn(%d)", int(p))
	}
}

// ParsePostUTurn converts "creep" or "dwell" into a PostUTurn.
func ParsePostUTurn(value string) (PostUTurn, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "creep":
		return PostUTurnCreep, nil
	case "dwell":
		return PostUTurnDwell, nil
	default:
		return PostUTurnCreep, fmt.Errorf("unknown post-uturn behaviour %q", value)
	}
}

// StepKind tells the actuator how to apply a step.
type StepKind int

const (
	StepStop StepKind = iota + 1
	StepDrive
	StepSpin
)

// Step is one open-loop phase of a maneuver.
type Step struct {
	Name     string
	Kind     StepKind
	Command  MotorCommand
	Duration time.Duration
}

// Maneuver is a fixed sequence of timed steps executed without sensor feedback.
type Maneuver struct {
	Name  string
	Steps []Step
}

// Total returns the summed duration of all steps.
func (m Maneuver) Total() time.Duration {
	var total time.Duration
	for _, s := range m.Steps {
		total += s.Duration
	}
	return total
}

func stopStep(name string, d Duration) Step {
	return Step{Name: name, Kind: StepStop, Duration: d.D()}
}

func driveStep(name string, speed int, d Duration) Step {
	return Step{Name: name, Kind: StepDrive, Command: MotorCommand{Left: speed, Right: speed}, Duration: d.D()}
}

func spinStep(name string, dir Turn, speed int, d Duration) Step {
	return Step{Name: name, Kind: StepSpin, Command: SpinCommand(dir, speed), Duration: d.D()}
}

// OvertakeManeuver detours around a box sitting on the line: out to the right,
// past the box, and back onto the line heading the original way.
func OvertakeManeuver(t TimingConfig, s SpeedConfig) Maneuver {
	return Maneuver{
		Name: "overtake",
		Steps: []Step{
			stopStep("halt", t.Pause),
			spinStep("turn-out", TurnRight, s.Maneuver, t.Turn90),
			driveStep("sidestep-out", s.Maneuver, t.Lateral),
			spinStep("turn-parallel", TurnLeft, s.Maneuver, t.Turn90),
			driveStep("pass", s.Maneuver, t.PassThrough),
			spinStep("turn-in", TurnLeft, s.Maneuver, t.Turn90),
			driveStep("sidestep-back", s.Maneuver, t.Lateral),
			spinStep("turn-realign", TurnRight, s.Maneuver, t.Turn90),
			stopStep("settle", t.Pause),
		},
	}
}

// UTurnManeuver spins the robot 180 degrees at the far-end marker.
func UTurnManeuver(t TimingConfig, s SpeedConfig, post PostUTurn) Maneuver {
	steps := []Step{
		stopStep("halt", t.Pause),
		spinStep("spin", TurnRight, s.Maneuver, t.Turn180),
	}
	if post == PostUTurnDwell {
		steps = append(steps, stopStep("dwell", t.PostUTurnDwell))
	} else {
		steps = append(steps,
			stopStep("stop", t.Pause),
			driveStep("creep", s.Cruise, t.PostUTurnCreep),
		)
	}
	return Maneuver{Name: "uturn", Steps: steps}
}

// StartupManeuver creeps forward off the home marker before marker detection
// is armed.
func StartupManeuver(t TimingConfig, s SpeedConfig) Maneuver {
	return Maneuver{
		Name:  "startup",
		Steps: []Step{driveStep("creep", s.Cruise, t.StartupCreep)},
	}
}

// ManeuverRunner advances a maneuver one tick at a time.
//
// The active phase is an index plus the time that phase began. Phase boundaries
// accumulate from the start time, so tick jitter does not stretch the sequence.
type ManeuverRunner struct {
	m      Maneuver
	phase  int
	start  time.Time
	active bool
}

// Start begins m at now.
func (r *ManeuverRunner) Start(m Maneuver, now time.Time) {
	r.m = m
	r.phase = 0
	r.start = now
	r.active = true
}

// Active reports whether a maneuver is in progress.
func (r *ManeuverRunner) Active() bool {
	return r.active
}

// Name returns the name of the current or last maneuver.
func (r *ManeuverRunner) Name() string {
	return r.m.Name
}

// Phase returns the name of the current step, or "" when idle.
func (r *ManeuverRunner) Phase() string {
	if !r.active || r.phase >= len(r.m.Steps) {
		return ""
	}
	return r.m.Steps[r.phase].Name
}

// Advance returns the step that should be applied at now. done is true once
// every step has run out; the returned step is then a stop.
func (r *ManeuverRunner) Advance(now time.Time) (step Step, done bool) {
	if !r.active {
		return Step{Name: "idle", Kind: StepStop}, true
	}
	for r.phase < len(r.m.Steps) {
		st := r.m.Steps[r.phase]
		end := r.start.Add(st.Duration)
		if now.Before(end) {
			return st, false
		}
		r.start = end
		r.phase++
	}
	r.active = false
	return Step{Name: "done", Kind: StepStop}, true
}

// Abort drops the current maneuver.
func (r *ManeuverRunner) Abort() {
	r.active = false
}
