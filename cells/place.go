package cells

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/environment"
	"github.com/pthm-cable/arena/motion"
)

// ErrUnknownDescription is returned for an unrecognised receptive field shape.
var ErrUnknownDescription = errors.New("unknown place cell description")

// Description is the receptive field shape.
type Description string

const (
	Gaussian          Description = "gaussian"
	GaussianThreshold Description = "gaussian_threshold"
	DiffOfGaussians   Description = "diff_of_gaussians"
	TopHat            Description = "top_hat"
	OneHot            Description = "one_hot"
)

// dogRatio is the width ratio of the surround to the centre gaussian.
const dogRatio = 1.5

// ParseDescription validates a description name.
func ParseDescription(s string) (Description, error) {
	switch d := Description(s); d {
	case Gaussian, GaussianThreshold, DiffOfGaussians, TopHat, OneHot:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDescription, s)
}

// Config configures a place cell population. Centres, when set, override N.
// An empty WallGeometry means geodesic in solid arenas and euclidean in
// periodic ones.
type Config struct {
	N            int
	Description  Description
	Width        float64
	WallGeometry environment.WallGeometry
	MinRate      float64
	MaxRate      float64
	Centres      []r2.Vec
}

// DefaultConfig returns ten gaussian cells of width 20cm firing in [0, 1].
func DefaultConfig() Config {
	return Config{
		N:           10,
		Description: Gaussian,
		Width:       0.2,
		MinRate:     0,
		MaxRate:     1,
	}
}

// Snapshot is one entry of the firing rate history.
type Snapshot struct {
	T      float64
	Rates  []float64
	Spikes []bool // Poisson spikes, drawn with probability dt*rate
}

// PlaceCells is a population whose rates depend only on the distance from
// each cell centre.
type PlaceCells struct {
	agent   *motion.Agent
	env     *environment.Environment
	cfg     Config
	centres []r2.Vec
	rng     *rand.Rand
	history []Snapshot
}

// NewPlaceCells builds a population attached to agent. Centres are scattered
// with jittered uniform sampling unless cfg provides them.
func NewPlaceCells(agent *motion.Agent, cfg Config, rng *rand.Rand) (*PlaceCells, error) {
	env := agent.Environment()
	if _, err := ParseDescription(string(cfg.Description)); err != nil {
		return nil, err
	}
	if !(cfg.Width > 0) {
		return nil, fmt.Errorf("%w: place cell width must be positive, got %v", environment.ErrConfiguration, cfg.Width)
	}
	if cfg.WallGeometry == "" {
		cfg.WallGeometry = environment.Geodesic
		if env.Boundary() == environment.Periodic {
			cfg.WallGeometry = environment.Euclidean
		}
	}
	if _, err := environment.ParseWallGeometry(string(cfg.WallGeometry)); err != nil {
		return nil, err
	}
	if cfg.WallGeometry != environment.Euclidean && env.Boundary() == environment.Periodic && env.Dimensionality() == environment.Dim2D {
		return nil, fmt.Errorf("%w: %s distances need solid boundaries", environment.ErrConfiguration, cfg.WallGeometry)
	}

	centres := append([]r2.Vec(nil), cfg.Centres...)
	if len(centres) == 0 {
		if cfg.N <= 0 {
			return nil, fmt.Errorf("%w: need at least one place cell, got %d", environment.ErrConfiguration, cfg.N)
		}
		var err error
		if centres, err = env.SamplePositions(cfg.N, environment.UniformJitter, rng); err != nil {
			return nil, err
		}
	}
	cfg.N = len(centres)
	return &PlaceCells{agent: agent, env: env, cfg: cfg, centres: centres, rng: rng}, nil
}

// N returns the number of cells.
func (pc *PlaceCells) N() int { return pc.cfg.N }

// Centres returns a copy of the cell centres.
func (pc *PlaceCells) Centres() []r2.Vec { return append([]r2.Vec(nil), pc.centres...) }

// Config returns the effective configuration.
func (pc *PlaceCells) Config() Config { return pc.cfg }

// FiringRates evaluates every cell at the positions selected by q. Rows are
// cells, columns are positions.
func (pc *PlaceCells) FiringRates(q Query) (*mat.Dense, error) {
	pos := q.positions(pc.agent, pc.env)
	if len(pos) == 0 || len(pc.centres) == 0 {
		return &mat.Dense{}, nil
	}
	dist, err := pc.env.DistancesBetween(pc.centres, pos, pc.cfg.WallGeometry)
	if err != nil {
		return nil, err
	}

	w := pc.cfg.Width
	gauss := func(d, w float64) float64 { return math.Exp(-d * d / (2 * w * w)) }
	rows, cols := dist.Dims()
	rates := mat.NewDense(rows, cols, nil)
	switch pc.cfg.Description {
	case Gaussian:
		rates.Apply(func(_, _ int, d float64) float64 { return gauss(d, w) }, dist)
	case GaussianThreshold:
		floor := math.Exp(-0.5)
		rates.Apply(func(_, _ int, d float64) float64 {
			return math.Max(gauss(d, w)-floor, 0) / (1 - floor)
		}, dist)
	case DiffOfGaussians:
		k := dogRatio * dogRatio
		rates.Apply(func(_, _ int, d float64) float64 {
			return (gauss(d, w) - gauss(d, dogRatio*w)/k) * k / (k - 1)
		}, dist)
	case TopHat:
		rates.Apply(func(_, _ int, d float64) float64 {
			if d < w {
				return 1
			}
			return 0
		}, dist)
	case OneHot:
		rates = oneHot(dist)
	}

	lo, hi := pc.cfg.MinRate, pc.cfg.MaxRate
	rates.Apply(func(_, _ int, v float64) float64 { return v*(hi-lo) + lo }, rates)
	return rates, nil
}

// oneHot fires only the nearest cell to each position.
func oneHot(dist *mat.Dense) *mat.Dense {
	rows, cols := dist.Dims()
	out := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		best := 0
		for i := 1; i < rows; i++ {
			if math.Abs(dist.At(i, j)) < math.Abs(dist.At(best, j)) {
				best = i
			}
		}
		out.Set(best, j, 1)
	}
	return out
}

// Update evaluates the population at the agent and appends the rates, with
// spikes sampled over the agent's last step, to the history.
func (pc *PlaceCells) Update() error {
	rates, err := pc.FiringRates(CurrentState{})
	if err != nil {
		return err
	}
	col := mat.Col(nil, 0, rates)
	dt := pc.agent.Params().DT
	spikes := make([]bool, len(col))
	for i, r := range col {
		spikes[i] = pc.rng.Float64() < dt*r
	}
	pc.history = append(pc.history, Snapshot{
		T:      pc.agent.State().T,
		Rates:  col,
		Spikes: spikes,
	})
	return nil
}

// History returns every snapshot recorded by Update.
func (pc *PlaceCells) History() []Snapshot {
	return append([]Snapshot(nil), pc.history...)
}

// Last returns the most recent snapshot and false if Update was never called.
func (pc *PlaceCells) Last() (Snapshot, bool) {
	if n := len(pc.history); n > 0 {
		return pc.history[n-1], true
	}
	return Snapshot{}, false
}
