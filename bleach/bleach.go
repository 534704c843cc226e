// Package bleach models first-order photobleaching of the pigment:
// exponential decay of concentration over elapsed time, with a bounded
// time-series history for plotting concentration against time.
package bleach

import (
	"math"

	"github.com/google/uuid"
)

// DefaultSeriesCapacity bounds the retained time-series history.
const DefaultSeriesCapacity = 600

// TimeSeriesPoint is one sample of the concentration trajectory.
type TimeSeriesPoint struct {
	ElapsedMinutes          float64 `json:"elapsedMinutes"`
	ConcentrationMilliMolar float64 `json:"concentrationMilliMolar"`
}

// Run is one photobleaching episode. Concentration follows the closed-form
// decay law anchored to the start of the run,
//
//	c(t) = c0 · exp(-k·t)
//
// rather than compounding per-tick multiplication, so the trajectory is
// reproducible under irregular tick spacing.
type Run struct {
	ID                    uuid.UUID
	RateConstantPerMinute float64
	StartConcentration    float64

	elapsedMinutes float64
}

// Start begins a bleaching run from the given concentration. A negative
// initial concentration is clamped to the physical floor of 0.
func Start(initialConcentrationMilliMolar, rateConstantPerMinute float64) *Run {
	if initialConcentrationMilliMolar < 0 {
		initialConcentrationMilliMolar = 0
	}
	return &Run{
		ID:                    uuid.New(),
		RateConstantPerMinute: rateConstantPerMinute,
		StartConcentration:    initialConcentrationMilliMolar,
	}
}

// Advance moves the run forward by the elapsed minutes since the last tick
// and returns the new concentration. Non-positive intervals leave the run
// where it is. Decay can underflow toward 0 but never goes negative.
func (r *Run) Advance(elapsedMinutesSinceLastTick float64) float64 {
	if elapsedMinutesSinceLastTick > 0 {
		r.elapsedMinutes += elapsedMinutesSinceLastTick
	}
	return r.Concentration()
}

// Concentration evaluates the decay law at the run's current elapsed time.
func (r *Run) Concentration() float64 {
	c := r.StartConcentration * math.Exp(-r.RateConstantPerMinute*r.elapsedMinutes)
	if c < 0 {
		return 0
	}
	return c
}

// ElapsedMinutes reports total time advanced since the run started.
func (r *Run) ElapsedMinutes() float64 {
	return r.elapsedMinutes
}

// Series is a FIFO-bounded concentration-vs-time history. Once capacity is
// exceeded the oldest points are evicted first.
type Series struct {
	capacity int
	points   []TimeSeriesPoint
}

// NewSeries creates a series with the given capacity; zero or negative
// capacities fall back to DefaultSeriesCapacity.
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultSeriesCapacity
	}
	return &Series{capacity: capacity}
}

// Append records a point, evicting the oldest point when full.
func (s *Series) Append(p TimeSeriesPoint) {
	if len(s.points) == s.capacity {
		s.points = s.points[1:]
	}
	s.points = append(s.points, p)
}

// Len reports the number of retained points.
func (s *Series) Len() int {
	return len(s.points)
}

// Points returns the retained history, oldest first.
func (s *Series) Points() []TimeSeriesPoint {
	out := make([]TimeSeriesPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Reset drops all retained points.
func (s *Series) Reset() {
	s.points = nil
}
