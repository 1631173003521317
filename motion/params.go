// Package motion advances an agent through an environment one time step at a
// time, using an Ornstein-Uhlenbeck driven random policy with wall repulsion
// and wall bouncing, or by playing back an imported trajectory.
package motion

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid motion parameters")

// ErrInvalidStep is returned by Update for a bad step size or drift.
var ErrInvalidStep = errors.New("invalid motion step")

// Params holds the motion model parameters. Defaults are fit to rat
// foraging data (Sargolini et al. 2006).
type Params struct {
	DT                              float64 // default step size, seconds
	SpeedMean                       float64 // m/s; Rayleigh scale in 2D
	SpeedStd                        float64 // m/s; only used in 1D and for the initial speed
	SpeedCoherenceTime              float64 // seconds
	RotationalVelocityStd           float64 // rad/s
	RotationalVelocityCoherenceTime float64 // seconds
	Thigmotaxis                     float64 // 0 = avoid walls, 1 = hug walls
	WallsRepel                      bool
	WallRepelDistance               float64 // metres
}

// DefaultParams returns the default motion parameters.
func DefaultParams() Params {
	return Params{
		DT:                              0.01,
		SpeedMean:                       0.08,
		SpeedStd:                        0.08,
		SpeedCoherenceTime:              0.7,
		RotationalVelocityStd:           120 * math.Pi / 180,
		RotationalVelocityCoherenceTime: 0.08,
		Thigmotaxis:                     0.5,
		WallsRepel:                      true,
		WallRepelDistance:               0.10,
	}
}

// Validate checks every parameter range.
func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"dt", p.DT},
		{"speed_mean", p.SpeedMean},
		{"speed_coherence_time", p.SpeedCoherenceTime},
		{"rotational_velocity_coherence_time", p.RotationalVelocityCoherenceTime},
		{"wall_repel_distance", p.WallRepelDistance},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParams, f.name, f.v)
		}
	}
	if !(p.SpeedStd >= 0) {
		return fmt.Errorf("%w: speed_std must be non-negative, got %v", ErrInvalidParams, p.SpeedStd)
	}
	if !(p.RotationalVelocityStd >= 0) {
		return fmt.Errorf("%w: rotational_velocity_std must be non-negative, got %v", ErrInvalidParams, p.RotationalVelocityStd)
	}
	if !(p.Thigmotaxis >= 0 && p.Thigmotaxis <= 1) {
		return fmt.Errorf("%w: thigmotaxis must be in [0, 1], got %v", ErrInvalidParams, p.Thigmotaxis)
	}
	return nil
}
