package rover_nav

// SpeedConfig holds the PWM magnitudes used by line following and maneuvers.
type SpeedConfig struct {
	Cruise     int `json:"cruise"`
	Correction int `json:"correction"`
	Maneuver   int `json:"maneuver"`
}

// Rule is one entry of the line-following priority list.
type Rule struct {
	Name   string
	Match  func(LinePattern) bool
	Action Action
}

// DefaultRules is the steering priority list. The first matching rule wins.
//
// Side corrections outrank driving straight whenever a side sensor disagrees with
// the middle one, and a lost line always ends in a stop.
var DefaultRules = []Rule{
	{
		Name:   "all-on-line",
		Match:  func(p LinePattern) bool { return p.Left && p.Middle && p.Right },
		Action: ActionMarker,
	},
	{
		Name:   "middle-only",
		Match:  func(p LinePattern) bool { return !p.Left && p.Middle && !p.Right },
		Action: ActionStraight,
	},
	{
		Name:   "right-on-line",
		Match:  func(p LinePattern) bool { return p.Right },
		Action: ActionPivotRight,
	},
	{
		Name:   "left-on-line",
		Match:  func(p LinePattern) bool { return p.Left },
		Action: ActionPivotLeft,
	},
	{
		Name:   "middle-loose",
		Match:  func(p LinePattern) bool { return !p.Left && !p.Right && p.MiddleLoose },
		Action: ActionStraight,
	},
	{
		Name:   "line-lost",
		Match:  func(LinePattern) bool { return true },
		Action: ActionStop,
	},
}

// LineFollowController maps line patterns to steering actions.
type LineFollowController struct {
	Cfg   SpeedConfig
	rules []Rule
}

// NewLineFollowController constructs a controller using DefaultRules.
func NewLineFollowController(cfg SpeedConfig) *LineFollowController {
	return &LineFollowController{Cfg: cfg, rules: DefaultRules}
}

// Rules returns the priority list in evaluation order.
func (lf *LineFollowController) Rules() []Rule {
	return lf.rules
}

// Decide returns the first rule matching p.
func (lf *LineFollowController) Decide(p LinePattern) Rule {
	for _, r := range lf.rules {
		if r.Match(p) {
			return r
		}
	}
	return Rule{Name: "line-lost", Action: ActionStop}
}

// Command converts a steering action into wheel speeds.
//
// Marker handling belongs to the lap stage machine; here a marker is driven
// through like a straight line.
func (lf *LineFollowController) Command(a Action) MotorCommand {
	switch a {
	case ActionStraight, ActionMarker, ActionPassMarker:
		return MotorCommand{Left: lf.Cfg.Cruise, Right: lf.Cfg.Cruise}
	case ActionPivotRight:
		return SpinCommand(TurnRight, lf.Cfg.Correction)
	case ActionPivotLeft:
		return SpinCommand(TurnLeft, lf.Cfg.Correction)
	default:
		return MotorCommand{}
	}
}

// SpinCommand returns the wheel speeds for an in-place turn.
func SpinCommand(dir Turn, speed int) MotorCommand {
	if dir == TurnRight {
		return MotorCommand{Left: speed, Right: -speed}
	}
	return MotorCommand{Left: -speed, Right: speed}
}
