// Package trajectory provides continuous position samplers built from
// recorded trajectories, used for imported-trajectory playback.
package trajectory

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrImportData is returned when trajectory data is missing or malformed.
var ErrImportData = errors.New("invalid trajectory data")

// Sampler is a continuous position source over [0, Duration()].
type Sampler interface {
	Sample(t float64) r2.Vec
	Duration() float64
}

// Spline interpolates a recorded trajectory independently along each axis.
// Three or more samples use a natural cubic spline, two samples a straight line.
type Spline struct {
	x, y     interp.FittablePredictor
	duration float64
	bounds   r2.Box
	n        int
}

// NewSpline fits a spline through positions at the given times. Times are
// shifted so the first sample is at t=0 and must be strictly increasing.
func NewSpline(times []float64, positions []r2.Vec) (*Spline, error) {
	if len(times) != len(positions) {
		return nil, fmt.Errorf("%w: %d times but %d positions", ErrImportData, len(times), len(positions))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrImportData, len(times))
	}

	ts := make([]float64, len(times))
	xs := make([]float64, len(times))
	ys := make([]float64, len(times))
	bounds := r2.Box{Min: positions[0], Max: positions[0]}
	for i := range times {
		ts[i] = times[i] - times[0]
		p := positions[i]
		if math.IsNaN(ts[i]) || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return nil, fmt.Errorf("%w: NaN in sample %d", ErrImportData, i)
		}
		if i > 0 && ts[i] <= ts[i-1] {
			return nil, fmt.Errorf("%w: times must be strictly increasing (sample %d)", ErrImportData, i)
		}
		xs[i], ys[i] = p.X, p.Y
		bounds.Min.X = math.Min(bounds.Min.X, p.X)
		bounds.Min.Y = math.Min(bounds.Min.Y, p.Y)
		bounds.Max.X = math.Max(bounds.Max.X, p.X)
		bounds.Max.Y = math.Max(bounds.Max.Y, p.Y)
	}

	s := &Spline{
		duration: ts[len(ts)-1],
		bounds:   bounds,
		n:        len(ts),
	}
	s.x, s.y = newPredictor(len(ts)), newPredictor(len(ts))
	if err := s.x.Fit(ts, xs); err != nil {
		return nil, fmt.Errorf("%w: fitting x: %v", ErrImportData, err)
	}
	if err := s.y.Fit(ts, ys); err != nil {
		return nil, fmt.Errorf("%w: fitting y: %v", ErrImportData, err)
	}
	return s, nil
}

func newPredictor(n int) interp.FittablePredictor {
	if n < 3 {
		return &interp.PiecewiseLinear{}
	}
	return &interp.NaturalCubic{}
}

// Sample returns the interpolated position at t.
func (s *Spline) Sample(t float64) r2.Vec {
	return r2.Vec{X: s.x.Predict(t), Y: s.y.Predict(t)}
}

// Duration returns the time span of the recording.
func (s *Spline) Duration() float64 { return s.duration }

// Bounds returns the bounding box of the recorded samples.
func (s *Spline) Bounds() r2.Box { return s.bounds }

// Len returns the number of recorded samples.
func (s *Spline) Len() int { return s.n }
