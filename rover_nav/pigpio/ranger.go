// Package pigpio drives an HC-SR04 rangefinder and H-bridge wheels from the
// host GPIO header.
package pigpio

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"line-rover/rover_nav"
)

// SpeedOfSound is in metres per second at room temperature.
const SpeedOfSound = 343.0

// TriggerPulse is the HC-SR04 trigger width.
const TriggerPulse = 10 * time.Microsecond

// OutPin is a GPIO output.
type OutPin interface {
	Out(l gpio.Level) error
}

// EchoPin is a GPIO input with edge detection.
type EchoPin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	WaitForEdge(timeout time.Duration) bool
}

// Ranger measures distance with an HC-SR04.
type Ranger struct {
	trigger OutPin
	echo    EchoPin
	timeout time.Duration
	clock   rover_nav.Clock
}

// NewRanger wraps already configured pins.
func NewRanger(trigger OutPin, echo EchoPin, timeout time.Duration, clock rover_nav.Clock) *Ranger {
	return &Ranger{trigger: trigger, echo: echo, timeout: timeout, clock: clock}
}

// OpenRanger looks up the configured pins on the host.
func OpenRanger(cfg rover_nav.GPIOConfig, clock rover_nav.Clock) (*Ranger, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	trigger := gpioreg.ByName(cfg.Trigger)
	if trigger == nil {
		return nil, fmt.Errorf("no GPIO trigger pin named: %s", cfg.Trigger)
	}
	echo := gpioreg.ByName(cfg.Echo)
	if echo == nil {
		return nil, fmt.Errorf("no GPIO echo pin named: %s", cfg.Echo)
	}
	if err := trigger.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, err
	}
	return NewRanger(trigger, echo, cfg.EchoTimeout.D(), clock), nil
}

// ReadDistance fires one ping. A missing or late echo reads as OutOfRange.
func (r *Ranger) ReadDistance() (rover_nav.Distance, error) {
	if err := r.echo.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return rover_nav.OutOfRange, err
	}
	if err := r.trigger.Out(gpio.High); err != nil {
		return rover_nav.OutOfRange, err
	}
	r.clock.Sleep(TriggerPulse)
	if err := r.trigger.Out(gpio.Low); err != nil {
		return rover_nav.OutOfRange, err
	}

	if !r.echo.WaitForEdge(r.timeout) {
		return rover_nav.OutOfRange, nil
	}
	start := r.clock.Now()

	if err := r.echo.In(gpio.PullDown, gpio.FallingEdge); err != nil {
		return rover_nav.OutOfRange, err
	}
	if !r.echo.WaitForEdge(r.timeout) {
		return rover_nav.OutOfRange, nil
	}

	d := rover_nav.Distance(TimeToCentimeters(r.clock.Since(start)))
	if !d.Valid() {
		return rover_nav.OutOfRange, nil
	}
	return d, nil
}

// TimeToCentimeters converts a round-trip echo time into a one-way distance.
func TimeToCentimeters(tof time.Duration) float64 {
	return tof.Seconds() / 2 * SpeedOfSound * 100
}
