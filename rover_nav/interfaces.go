package rover_nav

import "fmt"

// SensorSample is one reading of the three reflective line sensors.
//
// Values are raw ADC counts in [0, MaxIntensity]; larger means darker.
type SensorSample struct {
	Left   int
	Middle int
	Right  int
}

// MaxIntensity is the top of the analog range reported by the line sensors.
const MaxIntensity = 1023

// LinePattern is the classified on-line state of the three sensors.
//
// MiddleLoose reports the middle sensor against the looser window used by the
// flicker-tolerant straight rule.
type LinePattern struct {
	Left        bool
	Middle      bool
	Right       bool
	MiddleLoose bool
}

// Bits renders the pattern as "LMR" with '1' for on-line, e.g. "010".
func (p LinePattern) Bits() string {
	b := []byte("000")
	if p.Left {
		b[0] = '1'
	}
	if p.Middle {
		b[1] = '1'
	}
	if p.Right {
		b[2] = '1'
	}
	return string(b)
}

// Distance is a rangefinder estimate in centimetres.
type Distance int

// OutOfRange is reported when the echo times out. It never counts as an obstacle.
const OutOfRange Distance = 200

// Valid reports whether d is a real measurement rather than the timeout sentinel.
func (d Distance) Valid() bool {
	return d >= 0 && d < OutOfRange
}

// Stage is the active leg of the round trip.
type Stage int

const (
	StageOutbound Stage = iota + 1
	StageReturning
	StageFinished
)

func (s Stage) String() string {
	switch s {
	case StageOutbound:
		return "OUTBOUND"
	case StageReturning:
		return "RETURNING"
	case StageFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Action is the steering decision for one tick.
type Action int

const (
	ActionMarker Action = iota + 1
	ActionStraight
	ActionPivotRight
	ActionPivotLeft
	ActionStop
	ActionManeuver
	ActionPassMarker
)

func (a Action) String() string {
	switch a {
	case ActionMarker:
		return "MARKER"
	case ActionStraight:
		return "STRAIGHT"
	case ActionPivotRight:
		return "PIVOT_RIGHT"
	case ActionPivotLeft:
		return "PIVOT_LEFT"
	case ActionStop:
		return "STOP"
	case ActionManeuver:
		return "MANEUVER"
	case ActionPassMarker:
		return "PASS_MARKER"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Wheel selects one side of the drive train.
type Wheel int

const (
	WheelLeft Wheel = iota
	WheelRight
)

func (w Wheel) String() string {
	if w == WheelLeft {
		return "L"
	}
	return "R"
}

// Turn is the direction of an in-place spin.
type Turn int

const (
	TurnLeft Turn = iota + 1
	TurnRight
)

// MotorCommand is the signed duty applied to each wheel, in [-MaxDuty, MaxDuty].
type MotorCommand struct {
	Left  int
	Right int
}

// MaxDuty is the largest PWM magnitude a wheel accepts.
const MaxDuty = 255

// LineSensors samples the three line sensors.
type LineSensors interface {
	ReadLine() (SensorSample, error)
}

// RangeFinder samples the forward ultrasonic rangefinder.
type RangeFinder interface {
	ReadDistance() (Distance, error)
}

// WheelDriver sets the direction bit and PWM magnitude of one wheel.
type WheelDriver interface {
	SetWheel(w Wheel, forward bool, duty uint8) error
}

// Hardware bundles the external collaborators the loop drives.
type Hardware struct {
	Line   LineSensors
	Range  RangeFinder
	Wheels WheelDriver
}
