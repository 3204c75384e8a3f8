// Package sim is an in-memory track for dry runs: a straight line with a
// T-marker at each end and an optional box sitting on it.
package sim

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"line-rover/rover_nav"
)

// Chassis and track geometry, in centimetres.
const (
	MaxSpeedCM        = 40.0 // wheel speed at full duty, per second
	WheelbaseCM       = 20.77
	SensorAheadCM     = 6.0 // line sensors and ranger sit this far ahead of the axle
	SensorSpreadCM    = 1.5
	LineHalfWidthCM   = 1.0
	MarkerHalfDepthCM = 1.5
	MarkerHalfSpanCM  = 5.0
)

// Reflectance values reported over the line and over bare floor.
const (
	DarkValue   = 800
	BrightValue = 80
	NoiseSigma  = 8.0
)

const integrationStep = 5 * time.Millisecond

// Pose is the axle centre and heading in radians, x along the track.
type Pose struct {
	X       float64
	Y       float64
	Heading float64
}

// World simulates the robot on the track. It advances lazily to the clock's
// current time whenever a sensor is read or a wheel is set.
type World struct {
	mu    sync.Mutex
	cfg   rover_nav.SimConfig
	clock rover_nav.Clock
	rng   *rand.Rand

	pose  Pose
	speed [2]float64
	last  time.Time
	odo   float64
}

// New places the robot on the home marker facing the far end.
func New(cfg rover_nav.SimConfig, clock rover_nav.Clock) *World {
	return &World{
		cfg:   cfg,
		clock: clock,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		pose:  Pose{X: -SensorAheadCM},
		last:  clock.Now(),
	}
}

// Pose returns the current pose.
func (w *World) Pose() Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	return w.pose
}

// SetPose moves the robot.
func (w *World) SetPose(p Pose) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	w.pose = p
}

// Odometer returns the distance the axle centre has travelled.
func (w *World) Odometer() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	return w.odo
}

// SetWheel changes one wheel's speed from now on.
func (w *World) SetWheel(wheel rover_nav.Wheel, forward bool, duty uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	v := float64(duty) / rover_nav.MaxDuty * MaxSpeedCM
	if !forward {
		v = -v
	}
	w.speed[wheel] = v
	return nil
}

// ReadLine samples the three downward sensors.
func (w *World) ReadLine() (rover_nav.SensorSample, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	return rover_nav.SensorSample{
		Left:   w.reflectance(SensorSpreadCM),
		Middle: w.reflectance(0),
		Right:  w.reflectance(-SensorSpreadCM),
	}, nil
}

// ReadDistance casts the ranger beam at the box.
func (w *World) ReadDistance() (rover_nav.Distance, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance()
	if w.cfg.ObstacleCM <= 0 {
		return rover_nav.OutOfRange, nil
	}
	half := w.cfg.ObstacleCM / 2
	ox, oy := w.ahead(SensorAheadCM, 0)
	d, ok := rayBox(ox, oy, math.Cos(w.pose.Heading), math.Sin(w.pose.Heading),
		w.cfg.ObstacleAtCM-half, w.cfg.ObstacleAtCM+half, -half, half)
	if !ok || d >= float64(rover_nav.OutOfRange) {
		return rover_nav.OutOfRange, nil
	}
	return rover_nav.Distance(d), nil
}

func (w *World) advance() {
	now := w.clock.Now()
	dt := now.Sub(w.last)
	w.last = now
	for dt > 0 {
		step := min(dt, integrationStep)
		w.integrate(step.Seconds())
		dt -= step
	}
}

// integrate applies differential-drive kinematics over dt seconds.
func (w *World) integrate(dt float64) {
	vl, vr := w.speed[rover_nav.WheelLeft], w.speed[rover_nav.WheelRight]
	v := (vl + vr) / 2
	omega := (vr - vl) / WheelbaseCM
	w.pose.X += v * math.Cos(w.pose.Heading) * dt
	w.pose.Y += v * math.Sin(w.pose.Heading) * dt
	w.pose.Heading = math.Remainder(w.pose.Heading+omega*dt, 2*math.Pi)
	w.odo += math.Abs(v) * dt
}

// ahead returns the point forward and lateral (left positive) of the axle.
func (w *World) ahead(forward, lateral float64) (x, y float64) {
	sin, cos := math.Sincos(w.pose.Heading)
	return w.pose.X + forward*cos - lateral*sin, w.pose.Y + forward*sin + lateral*cos
}

func (w *World) reflectance(lateral float64) int {
	x, y := w.ahead(SensorAheadCM, lateral)
	base := BrightValue
	if w.dark(x, y) {
		base = DarkValue
	}
	v := int(math.Round(float64(base) + w.rng.NormFloat64()*NoiseSigma))
	return max(0, min(rover_nav.MaxIntensity, v))
}

func (w *World) dark(x, y float64) bool {
	length := w.cfg.TrackLengthCM
	if x >= 0 && x <= length && math.Abs(y) <= LineHalfWidthCM {
		return true
	}
	onMarker := math.Abs(x) <= MarkerHalfDepthCM || math.Abs(x-length) <= MarkerHalfDepthCM
	return onMarker && math.Abs(y) <= MarkerHalfSpanCM
}

// rayBox returns the distance along the unit ray (dx, dy) from (ox, oy) to an
// axis-aligned box, zero when the origin is inside it.
func rayBox(ox, oy, dx, dy, minX, maxX, minY, maxY float64) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for _, axis := range [2][4]float64{{ox, dx, minX, maxX}, {oy, dy, minY, maxY}} {
		o, d, lo, hi := axis[0], axis[1], axis[2], axis[3]
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}
	if tmax < math.Max(tmin, 0) {
		return 0, false
	}
	return math.Max(tmin, 0), true
}
