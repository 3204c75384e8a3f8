package rover_nav

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestActuatorDrive(t *testing.T) {
	w := &fakeWheels{}
	a := NewActuator(w)

	assert.NoError(t, a.Drive(MotorCommand{Left: 100, Right: -80}))
	want := []wheelCall{
		{Wheel: WheelLeft, Forward: true, Duty: 100},
		{Wheel: WheelRight, Forward: false, Duty: 80},
	}
	if diff := cmp.Diff(want, w.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, MotorCommand{Left: 100, Right: -80}, a.Last())
}

func TestActuatorClamps(t *testing.T) {
	w := &fakeWheels{}
	a := NewActuator(w)

	assert.NoError(t, a.Drive(MotorCommand{Left: 999, Right: -999}))
	assert.Equal(t, MotorCommand{Left: MaxDuty, Right: -MaxDuty}, a.Last())
	left, right := w.lastDuty()
	assert.Equal(t, uint8(255), left)
	assert.Equal(t, uint8(255), right)
}

func TestActuatorStopKeepsDirection(t *testing.T) {
	w := &fakeWheels{}
	a := NewActuator(w)

	assert.NoError(t, a.TurnInPlace(TurnLeft, 120))
	w.calls = nil
	assert.NoError(t, a.Stop())

	want := []wheelCall{
		{Wheel: WheelLeft, Forward: false, Duty: 0},
		{Wheel: WheelRight, Forward: true, Duty: 0},
	}
	if diff := cmp.Diff(want, w.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, MotorCommand{}, a.Last())
}

func TestActuatorReportsDriverErrors(t *testing.T) {
	w := &fakeWheels{err: errFake}
	a := NewActuator(w)

	err := a.Drive(MotorCommand{Left: 10, Right: 10})
	assert.ErrorIs(t, err, errFake)
	assert.Len(t, w.calls, 2, "both wheels are still commanded")
}
