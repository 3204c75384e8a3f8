// Package firmata reads the line sensors and drives the wheels through an
// Arduino running StandardFirmata.
package firmata

import (
	"errors"
	"fmt"

	gf "gobot.io/x/gobot/platforms/firmata"

	"line-rover/rover_nav"
)

// Board is the subset of the gobot firmata adaptor the rover uses.
type Board interface {
	AnalogRead(pin string) (int, error)
	DigitalWrite(pin string, level byte) error
	PwmWrite(pin string, level byte) error
}

// Driver implements LineSensors and WheelDriver on a firmata board.
type Driver struct {
	board    Board
	linePins [3]string
	wheels   [2]rover_nav.WheelPins
	finalize func() error
}

// New wraps an already connected board.
func New(board Board, cfg rover_nav.FirmataConfig) *Driver {
	return &Driver{
		board:    board,
		linePins: cfg.LinePins,
		wheels:   [2]rover_nav.WheelPins{cfg.Left, cfg.Right},
	}
}

// Connect opens the board on cfg.Port.
func Connect(cfg rover_nav.FirmataConfig) (*Driver, error) {
	if cfg.Port == "" {
		return nil, errors.New("firmata port must be set")
	}
	a := gf.NewAdaptor(cfg.Port)
	if err := a.Connect(); err != nil {
		return nil, fmt.Errorf("firmata %s: %w", cfg.Port, err)
	}
	d := New(a, cfg)
	d.finalize = a.Finalize
	return d, nil
}

// ReadLine samples the three analog line sensors.
func (d *Driver) ReadLine() (rover_nav.SensorSample, error) {
	var v [3]int
	for i, pin := range d.linePins {
		raw, err := d.board.AnalogRead(pin)
		if err != nil {
			return rover_nav.SensorSample{}, fmt.Errorf("analog %s: %w", pin, err)
		}
		v[i] = clampIntensity(raw)
	}
	return rover_nav.SensorSample{Left: v[0], Middle: v[1], Right: v[2]}, nil
}

// SetWheel sets the H-bridge inputs and enable duty of one wheel.
// Forward drives IN1 high and IN2 low.
func (d *Driver) SetWheel(w rover_nav.Wheel, forward bool, duty uint8) error {
	pins := d.wheels[w]
	in1, in2 := byte(0), byte(1)
	if forward {
		in1, in2 = 1, 0
	}
	if err := d.board.DigitalWrite(pins.In1, in1); err != nil {
		return err
	}
	if err := d.board.DigitalWrite(pins.In2, in2); err != nil {
		return err
	}
	return d.board.PwmWrite(pins.Enable, duty)
}

// Close stops both wheels and releases the board.
func (d *Driver) Close() error {
	err := errors.Join(
		d.SetWheel(rover_nav.WheelLeft, true, 0),
		d.SetWheel(rover_nav.WheelRight, true, 0),
	)
	if d.finalize != nil {
		err = errors.Join(err, d.finalize())
	}
	return err
}

func clampIntensity(v int) int {
	if v < 0 {
		return 0
	}
	if v > rover_nav.MaxIntensity {
		return rover_nav.MaxIntensity
	}
	return v
}
