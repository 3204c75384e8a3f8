package rover_nav

import "fmt"

// Thresholds is the dead-band window of intensities read as on-line.
type Thresholds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Validate rejects windows that can never classify anything as on-line.
func (t Thresholds) Validate() error {
	if t.Low >= t.High {
		return fmt.Errorf("low (%d) must be below high (%d)", t.Low, t.High)
	}
	return nil
}

// Classify reports whether v lies strictly inside (Low, High).
//
// Readings at or beyond either bound are off-line; the extremes are ambient light
// or a faulted sensor.
func (t Thresholds) Classify(v int) bool {
	return t.Low < v && v < t.High
}

// LineClassifier turns raw samples into LinePatterns.
type LineClassifier struct {
	Tight Thresholds
	Loose Thresholds
}

// NewLineClassifier builds a classifier. A zero loose window falls back to tight.
func NewLineClassifier(tight, loose Thresholds) LineClassifier {
	if loose == (Thresholds{}) {
		loose = tight
	}
	return LineClassifier{Tight: tight, Loose: loose}
}

// Pattern classifies all three sensors of s.
func (c LineClassifier) Pattern(s SensorSample) LinePattern {
	return LinePattern{
		Left:        c.Tight.Classify(s.Left),
		Middle:      c.Tight.Classify(s.Middle),
		Right:       c.Tight.Classify(s.Right),
		MiddleLoose: c.Loose.Classify(s.Middle),
	}
}
