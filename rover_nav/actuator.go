package rover_nav

import (
	"errors"
	"fmt"
)

// Actuator issues direction and duty commands to both wheels.
type Actuator struct {
	drv     WheelDriver
	forward [2]bool
	last    MotorCommand
}

// NewActuator wraps a wheel driver. Both wheels start pointing forward.
func NewActuator(drv WheelDriver) *Actuator {
	return &Actuator{drv: drv, forward: [2]bool{true, true}}
}

// Drive sets signed speeds on both wheels, clamped to [-MaxDuty, MaxDuty].
func (a *Actuator) Drive(cmd MotorCommand) error {
	left := clampDuty(cmd.Left)
	right := clampDuty(cmd.Right)
	a.last = MotorCommand{Left: left, Right: right}
	return errors.Join(
		a.setWheel(WheelLeft, left >= 0, uint8(abs(left))),
		a.setWheel(WheelRight, right >= 0, uint8(abs(right))),
	)
}

// TurnInPlace spins the robot about its axle at speed.
func (a *Actuator) TurnInPlace(dir Turn, speed int) error {
	return a.Drive(SpinCommand(dir, speed))
}

// Stop zeroes both magnitudes and leaves the direction bits untouched.
func (a *Actuator) Stop() error {
	a.last = MotorCommand{}
	return errors.Join(
		a.setWheel(WheelLeft, a.forward[WheelLeft], 0),
		a.setWheel(WheelRight, a.forward[WheelRight], 0),
	)
}

// Last returns the most recent command after clamping.
func (a *Actuator) Last() MotorCommand {
	return a.last
}

func (a *Actuator) setWheel(w Wheel, forward bool, duty uint8) error {
	a.forward[w] = forward
	if err := a.drv.SetWheel(w, forward, duty); err != nil {
		return fmt.Errorf("wheel %s: %w", w, err)
	}
	return nil
}

func clampDuty(v int) int {
	if v > MaxDuty {
		return MaxDuty
	}
	if v < -MaxDuty {
		return -MaxDuty
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
