// Package hardware opens the backends named in the hardware config section
// and bundles them for the control loop.
package hardware

import (
	"context"
	"errors"
	"fmt"

	"line-rover/rover_nav"
	"line-rover/rover_nav/bridge"
	"line-rover/rover_nav/firmata"
	"line-rover/rover_nav/pigpio"
	"line-rover/rover_nav/sim"
)

// Set is the opened hardware. Close releases every backend.
type Set struct {
	rover_nav.Hardware

	// World is non-nil when running on the simulator.
	World *sim.World

	closers []func() error
}

// Opener opens one backend. Tests replace these to avoid real devices.
type Opener struct {
	Bridge  func(cfg rover_nav.SerialConfig, clock rover_nav.Clock) (*bridge.Bridge, error)
	Firmata func(cfg rover_nav.FirmataConfig) (*firmata.Driver, error)
	Ranger  func(cfg rover_nav.GPIOConfig, clock rover_nav.Clock) (*pigpio.Ranger, error)
	Wheels  func(cfg rover_nav.GPIOConfig) (*pigpio.Wheels, error)
}

// DefaultOpener opens real devices.
var DefaultOpener = Opener{
	Bridge:  bridge.Open,
	Firmata: firmata.Connect,
	Ranger:  pigpio.OpenRanger,
	Wheels:  pigpio.OpenWheels,
}

// Open builds the hardware named by cfg. A serial bridge is monitored until
// ctx is done.
func Open(ctx context.Context, cfg rover_nav.HardwareConfig, clock rover_nav.Clock) (*Set, error) {
	return DefaultOpener.Open(ctx, cfg, clock)
}

// Open builds the hardware named by cfg using o's backends.
func (o Opener) Open(ctx context.Context, cfg rover_nav.HardwareConfig, clock rover_nav.Clock) (*Set, error) {
	line, rng, wheels := cfg.Resolved()
	set := &Set{}

	if line == "sim" {
		set.World = sim.New(cfg.Sim, clock)
		set.Hardware = rover_nav.Hardware{Line: set.World, Range: set.World, Wheels: set.World}
		return set, nil
	}

	var br *bridge.Bridge
	openBridge := func() (*bridge.Bridge, error) {
		if br != nil {
			return br, nil
		}
		b, err := o.Bridge(cfg.Serial, clock)
		if err != nil {
			return nil, fmt.Errorf("serial bridge: %w", err)
		}
		set.closers = append(set.closers, b.Close)
		go func() {
			if err := b.Monitor(ctx); err != nil && !errors.Is(err, context.Canceled) {
				rover_nav.Logf("serial bridge: monitor stopped: %v", err)
			}
		}()
		br = b
		return b, nil
	}

	var fm *firmata.Driver
	openFirmata := func() (*firmata.Driver, error) {
		if fm != nil {
			return fm, nil
		}
		d, err := o.Firmata(cfg.Firmata)
		if err != nil {
			return nil, fmt.Errorf("firmata: %w", err)
		}
		set.closers = append(set.closers, d.Close)
		fm = d
		return d, nil
	}

	fail := func(err error) (*Set, error) {
		_ = set.Close()
		return nil, err
	}

	switch line {
	case "serial":
		b, err := openBridge()
		if err != nil {
			return fail(err)
		}
		set.Line = b
	case "firmata":
		d, err := openFirmata()
		if err != nil {
			return fail(err)
		}
		set.Line = d
	}

	switch rng {
	case "serial":
		b, err := openBridge()
		if err != nil {
			return fail(err)
		}
		set.Range = b
	case "gpio":
		r, err := o.Ranger(cfg.GPIO, clock)
		if err != nil {
			return fail(fmt.Errorf("gpio ranger: %w", err))
		}
		set.Range = r
	}

	switch wheels {
	case "serial":
		b, err := openBridge()
		if err != nil {
			return fail(err)
		}
		set.Wheels = b
	case "firmata":
		d, err := openFirmata()
		if err != nil {
			return fail(err)
		}
		set.Wheels = d
	case "gpio":
		w, err := o.Wheels(cfg.GPIO)
		if err != nil {
			return fail(fmt.Errorf("gpio wheels: %w", err))
		}
		set.Wheels = w
	}
	return set, nil
}

// Close releases backends in reverse order of opening.
func (s *Set) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
