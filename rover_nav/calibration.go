package rover_nav

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SensorStats summarises repeated readings of one sensor over one surface.
type SensorStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// SurfaceStats holds per-sensor statistics, ordered left, middle, right.
type SurfaceStats [3]SensorStats

// ErrTooFewSamples is returned when statistics need more readings.
var ErrTooFewSamples = errors.New("need at least two samples")

// SummarizeSamples computes per-sensor statistics over samples.
func SummarizeSamples(samples []SensorSample) (SurfaceStats, error) {
	var out SurfaceStats
	if len(samples) < 2 {
		return out, ErrTooFewSamples
	}
	cols := [3][]float64{}
	for i := range cols {
		cols[i] = make([]float64, len(samples))
	}
	for j, s := range samples {
		cols[0][j] = float64(s.Left)
		cols[1][j] = float64(s.Middle)
		cols[2][j] = float64(s.Right)
	}
	for i, col := range cols {
		mean, std := stat.MeanStdDev(col, nil)
		out[i] = SensorStats{Mean: mean, StdDev: std, Min: floats.Min(col), Max: floats.Max(col)}
	}
	return out, nil
}

// ErrSurfacesOverlap means line and floor readings cannot be separated.
var ErrSurfacesOverlap = errors.New("line and floor readings overlap")

// SuggestThresholds proposes a classifier window from readings taken with all
// sensors over the line and all sensors over bare floor.
//
// Each surface is widened to mean ± 3σ. Low sits halfway between the brightest
// floor bound and the darkest line bound; High sits the same margin above the
// darkest line bound, capped at MaxIntensity+1 so a saturated sensor still
// counts as on-line only below the cap.
func SuggestThresholds(line, floor SurfaceStats) (Thresholds, error) {
	floorTop := math.Inf(-1)
	lineBottom := math.Inf(1)
	lineTop := math.Inf(-1)
	for i := range line {
		floorTop = math.Max(floorTop, floor[i].Mean+3*floor[i].StdDev)
		lineBottom = math.Min(lineBottom, line[i].Mean-3*line[i].StdDev)
		lineTop = math.Max(lineTop, line[i].Mean+3*line[i].StdDev)
	}
	if floorTop >= lineBottom {
		return Thresholds{}, ErrSurfacesOverlap
	}
	margin := (lineBottom - floorTop) / 2
	low := int(math.Round(floorTop + margin))
	high := int(math.Round(lineTop + margin))
	if high > MaxIntensity+1 {
		high = MaxIntensity + 1
	}
	if low < 0 {
		low = 0
	}
	t := Thresholds{Low: low, High: high}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}
