package rover_nav

import "errors"

type wheelCall struct {
	Wheel   Wheel
	Forward bool
	Duty    uint8
}

type fakeWheels struct {
	calls []wheelCall
	err   error
}

func (f *fakeWheels) SetWheel(w Wheel, forward bool, duty uint8) error {
	f.calls = append(f.calls, wheelCall{Wheel: w, Forward: forward, Duty: duty})
	return f.err
}

// lastDuty returns the most recent duty written to each wheel.
func (f *fakeWheels) lastDuty() (left, right uint8) {
	for _, c := range f.calls {
		if c.Wheel == WheelLeft {
			left = c.Duty
		} else {
			right = c.Duty
		}
	}
	return left, right
}

type fakeLine struct {
	sample SensorSample
	err    error
	reads  int
}

func (f *fakeLine) ReadLine() (SensorSample, error) {
	f.reads++
	return f.sample, f.err
}

type fakeRange struct {
	d     Distance
	err   error
	reads int
}

func (f *fakeRange) ReadDistance() (Distance, error) {
	f.reads++
	return f.d, f.err
}

var errFake = errors.New("fake failure")

var (
	onLine    = SensorSample{Left: 50, Middle: 700, Right: 50}
	allDark   = SensorSample{Left: 700, Middle: 700, Right: 700}
	allBright = SensorSample{Left: 50, Middle: 50, Right: 50}
)
