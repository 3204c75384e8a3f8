package bridge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"line-rover/rover_nav"
)

// ErrBadFrame marks a sample line that could not be parsed.
var ErrBadFrame = errors.New("bad frame")

// Frame is one sensor sample streamed by the bridge.
type Frame struct {
	Sample   rover_nav.SensorSample
	Distance rover_nav.Distance
}

// parseFrame parses "S,<left>,<middle>,<right>,<cm>". ok is false for lines
// that are not samples, such as "#" comments or other tags.
func parseFrame(line string) (f Frame, ok bool, err error) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return Frame{}, false, nil
	}
	parts := strings.Split(s, ",")
	if strings.TrimSpace(parts[0]) != "S" {
		return Frame{}, false, nil
	}
	if len(parts) != 5 {
		return Frame{}, false, fmt.Errorf("%w: expected 5 fields, got %d", ErrBadFrame, len(parts))
	}

	var vals [4]int
	for i := range vals {
		vals[i], err = parseInt(parts[i+1])
		if err != nil {
			return Frame{}, false, fmt.Errorf("%w: field %d: %v", ErrBadFrame, i+1, err)
		}
	}
	for i := 0; i < 3; i++ {
		if vals[i] < 0 || vals[i] > rover_nav.MaxIntensity {
			return Frame{}, false, fmt.Errorf("%w: intensity %d out of range", ErrBadFrame, vals[i])
		}
	}

	d := rover_nav.Distance(vals[3])
	if !d.Valid() {
		d = rover_nav.OutOfRange
	}
	return Frame{
		Sample:   rover_nav.SensorSample{Left: vals[0], Middle: vals[1], Right: vals[2]},
		Distance: d,
	}, true, nil
}

// wheelCommand renders "W,<L|R>,<F|B>,<duty>\n".
func wheelCommand(w rover_nav.Wheel, forward bool, duty uint8) string {
	dir := "B"
	if forward {
		dir = "F"
	}
	return fmt.Sprintf("W,%s,%s,%d\n", w, dir, duty)
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}
