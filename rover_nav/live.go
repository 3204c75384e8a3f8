package rover_nav

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TickReport describes what one pass of the control loop saw and did.
type TickReport struct {
	T        time.Duration
	RunID    string
	Stage    Stage
	Action   Action
	Rule     string
	Phase    string
	Decision MarkerDecision
	Sample   SensorSample
	Pattern  LinePattern
	Distance Distance
	Command  MotorCommand
}

// Robot owns the mission state and runs the sense-decide-act loop.
type Robot struct {
	Cfg   AppConfig
	RunID string

	hw         Hardware
	clock      Clock
	classifier LineClassifier
	controller *LineFollowController
	act        *Actuator
	lap        *LapStageMachine
	runner     ManeuverRunner

	overtake Maneuver
	uturn    Maneuver
	startup  Maneuver

	telemetry *TelemetrySender
	viz       *VizMetrics

	start      time.Time
	started    bool
	overtakes  int
	actErrors  int
	lineFault  bool
	rangeFault bool
}

// NewRobot wires the controller, maneuvers and lap machine for one mission.
func NewRobot(cfg AppConfig, hw Hardware, clock Clock) *Robot {
	return &Robot{
		Cfg:        cfg,
		RunID:      uuid.New().String(),
		hw:         hw,
		clock:      clock,
		classifier: NewLineClassifier(cfg.Thresholds, cfg.LooseThresholds),
		controller: NewLineFollowController(cfg.Speeds),
		act:        NewActuator(hw.Wheels),
		overtake:   OvertakeManeuver(cfg.Timing, cfg.Speeds),
		uturn:      UTurnManeuver(cfg.Timing, cfg.Speeds, cfg.PostUTurn),
		startup:    StartupManeuver(cfg.Timing, cfg.Speeds),
	}
}

// SetTelemetry attaches the optional UDP and expvar side channels.
func (r *Robot) SetTelemetry(s *TelemetrySender, v *VizMetrics) {
	r.telemetry = s
	r.viz = v
}

// Stage returns the active lap stage, OUTBOUND before the first tick.
func (r *Robot) Stage() Stage {
	if r.lap == nil {
		return StageOutbound
	}
	return r.lap.Stage()
}

// Lap returns the lap stage machine, nil before the first tick.
func (r *Robot) Lap() *LapStageMachine {
	return r.lap
}

// Overtakes returns how many obstacle detours were started.
func (r *Robot) Overtakes() int {
	return r.overtakes
}

// begin starts the mission at now: the stage timer starts and the robot creeps
// off the home marker.
func (r *Robot) begin(now time.Time) {
	r.started = true
	r.start = now
	r.lap = NewLapStageMachine(r.Cfg.Timing.MinLeg.D(), now)
	Logf("mission %s: start, stage %s", r.RunID, r.lap.Stage())
}

// Tick runs one pass of the control loop at the clock's current time.
func (r *Robot) Tick() TickReport {
	now := r.clock.Now()
	var rep TickReport
	if !r.started {
		r.begin(now)
		r.startManeuver(r.startup, now, &rep)
		return r.publish(now, rep)
	}

	if r.lap.Finished() {
		r.stop()
		rep.Action = ActionStop
		return r.publish(now, rep)
	}

	if r.runner.Active() {
		step, done := r.runner.Advance(now)
		if !done {
			rep.Action = ActionManeuver
			rep.Phase = step.Name
			r.applyStep(step)
			return r.publish(now, rep)
		}
		r.maneuverDone(r.runner.Name(), now)
	}

	rep.Distance = r.readDistance()
	if rep.Distance.Valid() && int(rep.Distance) < r.Cfg.ObstacleLimitCM {
		r.overtakes++
		Logf("mission %s: obstacle at %dcm, overtaking", r.RunID, rep.Distance)
		r.startManeuver(r.overtake, now, &rep)
		return r.publish(now, rep)
	}

	rep.Sample, rep.Pattern = r.readLine()
	rule := r.controller.Decide(rep.Pattern)
	rep.Rule = rule.Name
	rep.Action = rule.Action

	switch rule.Action {
	case ActionMarker:
		rep.Decision = r.lap.OnMarker(now)
		switch rep.Decision {
		case MarkerFarEnd:
			Logf("mission %s: far end reached after %s, turning around", r.RunID, r.lap.LegDuration(StageOutbound))
			r.startManeuver(r.uturn, now, &rep)
		case MarkerHome:
			r.stop()
			rep.Action = ActionStop
			r.logSummary()
		default:
			rep.Action = ActionPassMarker
			r.drive(r.controller.Command(ActionPassMarker))
		}
	case ActionStop:
		r.stop()
	default:
		r.drive(r.controller.Command(rule.Action))
	}
	return r.publish(now, rep)
}

// Run ticks at cfg.Hz until the mission finishes or ctx is cancelled.
// Cancellation stops both wheels at once, even mid-maneuver, and leaves the
// mission FINISHED.
func (r *Robot) Run(ctx context.Context) error {
	if r.Cfg.Hz <= 0 {
		return fmt.Errorf("hz must be > 0")
	}
	period := time.Duration(float64(time.Second) / r.Cfg.Hz)

	for {
		select {
		case <-ctx.Done():
			r.runner.Abort()
			r.stop()
			if r.lap != nil {
				r.lap.Finish(r.clock.Now())
			}
			Logf("mission %s: aborted: %v", r.RunID, ctx.Err())
			return ctx.Err()
		default:
		}

		tickStart := r.clock.Now()
		rep := r.Tick()

		if r.Cfg.Log.Enabled {
			fmt.Printf(
				"%8.3f stage=%-9s action=%-11s phase=%-13s line=%s(%4d %4d %4d) dist=%3d cmd(l=%+4d r=%+4d)\n",
				rep.T.Seconds(),
				rep.Stage.String(),
				rep.Action.String(),
				rep.Phase,
				rep.Pattern.Bits(),
				rep.Sample.Left,
				rep.Sample.Middle,
				rep.Sample.Right,
				int(rep.Distance),
				rep.Command.Left,
				rep.Command.Right,
			)
		}

		if rep.Stage == StageFinished {
			return nil
		}

		if sleep := period - r.clock.Since(tickStart); sleep > 0 {
			r.clock.Sleep(sleep)
		}
	}
}

// startManeuver begins m at now and applies its first step.
func (r *Robot) startManeuver(m Maneuver, now time.Time, rep *TickReport) {
	r.runner.Start(m, now)
	step, done := r.runner.Advance(now)
	rep.Action = ActionManeuver
	if done {
		r.maneuverDone(m.Name, now)
		r.stop()
		return
	}
	rep.Phase = step.Name
	r.applyStep(step)
}

func (r *Robot) maneuverDone(name string, now time.Time) {
	switch name {
	case "startup":
		r.lap.ResetTimer(now)
		Logf("mission %s: clear of the start marker, markers trusted after %s", r.RunID, r.lap.MinLeg)
	case "uturn":
		r.lap.ResetTimer(now)
		Logf("mission %s: turned around, stage %s", r.RunID, r.lap.Stage())
	case "overtake":
		if r.Cfg.OvertakeRearmsSuppression {
			r.lap.ResetTimer(now)
		}
		Logf("mission %s: overtake done, reacquiring line", r.RunID)
	}
}

func (r *Robot) applyStep(s Step) {
	if s.Kind == StepStop {
		r.stop()
		return
	}
	r.drive(s.Command)
}

func (r *Robot) drive(cmd MotorCommand) {
	if err := r.act.Drive(cmd); err != nil {
		r.actErrors++
		Logf("mission %s: drive %+v: %v", r.RunID, cmd, err)
	}
}

func (r *Robot) stop() {
	if err := r.act.Stop(); err != nil {
		r.actErrors++
		Logf("mission %s: stop: %v", r.RunID, err)
	}
}

// readDistance samples the rangefinder. Any failure reads as out of range.
func (r *Robot) readDistance() Distance {
	if r.hw.Range == nil {
		return OutOfRange
	}
	d, err := r.hw.Range.ReadDistance()
	if err != nil {
		if !r.rangeFault {
			Logf("mission %s: rangefinder: %v", r.RunID, err)
		}
		r.rangeFault = true
		return OutOfRange
	}
	r.rangeFault = false
	if !d.Valid() {
		return OutOfRange
	}
	return d
}

// readLine samples and classifies the line sensors. A failed read classifies
// as no sensor on the line.
func (r *Robot) readLine() (SensorSample, LinePattern) {
	s, err := r.hw.Line.ReadLine()
	if err != nil {
		if !r.lineFault {
			Logf("mission %s: line sensors: %v", r.RunID, err)
		}
		r.lineFault = true
		return SensorSample{}, LinePattern{}
	}
	r.lineFault = false
	return s, r.classifier.Pattern(s)
}

func (r *Robot) publish(now time.Time, rep TickReport) TickReport {
	rep.T = now.Sub(r.start)
	rep.RunID = r.RunID
	rep.Stage = r.lap.Stage()
	rep.Command = r.act.Last()
	r.telemetry.Send(rep)
	r.viz.Update(rep)
	return rep
}

func (r *Robot) logSummary() {
	Logf("mission %s: complete: outbound %s, return %s, overtakes %d, ignored markers %d, actuation errors %d",
		r.RunID,
		r.lap.LegDuration(StageOutbound),
		r.lap.LegDuration(StageReturning),
		r.overtakes,
		r.lap.IgnoredMarkers(),
		r.actErrors,
	)
}
