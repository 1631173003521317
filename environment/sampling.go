package environment

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Sampling selects how SamplePositions scatters points.
type Sampling string

const (
	// Random places points uniformly at random.
	Random Sampling = "random"
	// Uniform places points on an evenly spaced grid.
	Uniform Sampling = "uniform"
	// UniformJitter is Uniform with each point jittered by up to 0.45 spacings.
	UniformJitter Sampling = "uniform_jitter"
)

const jitterFraction = 0.45

// SamplePositions scatters n points across the arena. Grid methods place as
// many points as tile the arena evenly and fill the remainder at random.
func (e *Environment) SamplePositions(n int, method Sampling, rng *rand.Rand) ([]r2.Vec, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: cannot sample %d positions", ErrConfiguration, n)
	}
	switch method {
	case Random, Uniform, UniformJitter:
	default:
		return nil, fmt.Errorf("%w: unknown sampling method %q", ErrConfiguration, method)
	}
	if n == 0 {
		return nil, nil
	}
	if e.cfg.Dimensionality == Dim1D {
		return e.sample1D(n, method, rng), nil
	}
	return e.sample2D(n, method, rng), nil
}

func (e *Environment) sample1D(n int, method Sampling, rng *rand.Rand) []r2.Vec {
	ex := e.extent
	out := make([]r2.Vec, 0, n)
	if method == Random {
		for i := 0; i < n; i++ {
			out = append(out, r2.Vec{X: ex.Min.X + rng.Float64()*(ex.Max.X-ex.Min.X)})
		}
		return out
	}
	dx := e.cfg.Scale / float64(n)
	for _, x := range arange(dx/2, e.cfg.Scale, dx) {
		if method == UniformJitter {
			x += jitter(rng, dx)
		}
		out = append(out, r2.Vec{X: x})
	}
	return truncate(out, n)
}

func (e *Environment) sample2D(n int, method Sampling, rng *rand.Rand) []r2.Vec {
	ex := e.extent
	w, h := ex.Max.X-ex.Min.X, ex.Max.Y-ex.Min.Y
	if method == Random {
		out := make([]r2.Vec, n)
		for i := range out {
			out[i] = r2.Vec{X: ex.Min.X + rng.Float64()*w, Y: ex.Min.Y + rng.Float64()*h}
		}
		return out
	}

	delta := math.Sqrt(w * h / float64(n))
	xs := arange(ex.Min.X+delta/2, ex.Max.X-delta/2+1e-6, delta)
	ys := arange(ex.Min.Y+delta/2, ex.Max.Y-delta/2+1e-6, delta)
	out := make([]r2.Vec, 0, n)
	for _, y := range ys {
		for _, x := range xs {
			p := r2.Vec{X: x, Y: y}
			if method == UniformJitter {
				p.X += jitter(rng, delta)
				p.Y += jitter(rng, delta)
			}
			out = append(out, p)
		}
	}
	out = truncate(out, n)
	if rem := n - len(out); rem > 0 {
		out = append(out, e.sample2D(rem, Random, rng)...)
	}
	return out
}

// DiscretePositions returns the cell-centred grid spanning the arena at the
// configured dx. 2D rows run from the top of the arena to the bottom.
func (e *Environment) DiscretePositions() []r2.Vec {
	return append([]r2.Vec(nil), e.discrete...)
}

func (e *Environment) discretise(dx float64) []r2.Vec {
	ex := e.extent
	xs := arange(ex.Min.X+dx/2, ex.Max.X, dx)
	if e.cfg.Dimensionality == Dim1D {
		out := make([]r2.Vec, len(xs))
		for i, x := range xs {
			out[i] = r2.Vec{X: x}
		}
		return out
	}
	ys := arange(ex.Min.Y+dx/2, ex.Max.Y, dx)
	out := make([]r2.Vec, 0, len(xs)*len(ys))
	for r := len(ys) - 1; r >= 0; r-- {
		for _, x := range xs {
			out = append(out, r2.Vec{X: x, Y: ys[r]})
		}
	}
	return out
}

// arange returns start, start+step, ... strictly below stop.
func arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func jitter(rng *rand.Rand, spacing float64) float64 {
	return (rng.Float64()*2 - 1) * jitterFraction * spacing
}

func truncate(ps []r2.Vec, n int) []r2.Vec {
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
