package pigpio

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"

	"line-rover/rover_nav"
)

// PWMPin is a GPIO output capable of hardware PWM.
type PWMPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
}

// WheelPins are the resolved H-bridge pins of one wheel.
type WheelPins struct {
	In1    OutPin
	In2    OutPin
	Enable PWMPin
}

// Wheels implements WheelDriver on host GPIO.
type Wheels struct {
	pins [2]WheelPins
	freq physic.Frequency
}

// NewWheels wraps resolved pins. freq is the PWM carrier.
func NewWheels(left, right WheelPins, freq physic.Frequency) *Wheels {
	return &Wheels{pins: [2]WheelPins{left, right}, freq: freq}
}

// OpenWheels looks up the configured wheel pins on the host.
func OpenWheels(cfg rover_nav.GPIOConfig) (*Wheels, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	left, err := resolve(cfg.Left)
	if err != nil {
		return nil, fmt.Errorf("left wheel: %w", err)
	}
	right, err := resolve(cfg.Right)
	if err != nil {
		return nil, fmt.Errorf("right wheel: %w", err)
	}
	return NewWheels(left, right, physic.Frequency(cfg.PWMHz)*physic.Hertz), nil
}

func resolve(p rover_nav.WheelPins) (WheelPins, error) {
	var pins [3]gpio.PinIO
	for i, name := range []string{p.In1, p.In2, p.Enable} {
		if pins[i] = gpioreg.ByName(name); pins[i] == nil {
			return WheelPins{}, fmt.Errorf("no GPIO pin named: %s", name)
		}
	}
	for _, pin := range pins[:2] {
		if err := pin.Out(gpio.Low); err != nil {
			return WheelPins{}, err
		}
	}
	return WheelPins{In1: pins[0], In2: pins[1], Enable: pins[2]}, nil
}

// SetWheel sets direction and duty of one wheel. Forward drives IN1 high.
func (w *Wheels) SetWheel(wheel rover_nav.Wheel, forward bool, duty uint8) error {
	p := w.pins[wheel]
	if err := p.In1.Out(gpio.Level(forward)); err != nil {
		return err
	}
	if err := p.In2.Out(gpio.Level(!forward)); err != nil {
		return err
	}
	return p.Enable.PWM(DutyFor(duty), w.freq)
}

// DutyFor maps a 0..255 wheel duty onto the gpio duty range.
func DutyFor(duty uint8) gpio.Duty {
	return gpio.Duty(int64(duty) * int64(gpio.DutyMax) / rover_nav.MaxDuty)
}
