package cells

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/environment"
	"github.com/pthm-cable/arena/geometry"
	"github.com/pthm-cable/arena/motion"
)

func newAgent(t *testing.T, cfg environment.Config) *motion.Agent {
	t.Helper()
	env, err := environment.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	a, err := motion.New(env, motion.DefaultParams(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func newCells(t *testing.T, a *motion.Agent, cfg Config) *PlaceCells {
	t.Helper()
	pc, err := NewPlaceCells(a, cfg, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("NewPlaceCells: %v", err)
	}
	return pc
}

func TestDescriptions(t *testing.T) {
	at := ExplicitPositions{Positions: []r2.Vec{{X: 0.5, Y: 0.5}, {X: 0.6, Y: 0.5}, {X: 0.5, Y: 0.9}}}
	dog := func(e float64) float64 { return (math.Exp(-e) - math.Exp(-e/2.25)/2.25) * 2.25 / 1.25 }
	tests := []struct {
		desc Description
		want []float64 // distances 0, 0.1 and 0.4 from the centre
	}{
		{Gaussian, []float64{1, math.Exp(-0.125), math.Exp(-2)}},
		{GaussianThreshold, []float64{1, (math.Exp(-0.125) - math.Exp(-0.5)) / (1 - math.Exp(-0.5)), 0}},
		{DiffOfGaussians, []float64{1, dog(0.125), dog(2)}},
		{TopHat, []float64{1, 1, 0}},
		{OneHot, []float64{1, 1, 1}},
	}
	a := newAgent(t, environment.DefaultConfig())
	for _, tc := range tests {
		t.Run(string(tc.desc), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Description = tc.desc
			cfg.Centres = []r2.Vec{{X: 0.5, Y: 0.5}}
			pc := newCells(t, a, cfg)

			fr, err := pc.FiringRates(at)
			if err != nil {
				t.Fatal(err)
			}
			if r, c := fr.Dims(); r != 1 || c != 3 {
				t.Fatalf("dims = %dx%d, want 1x3", r, c)
			}
			for j, want := range tc.want {
				if got := fr.At(0, j); math.Abs(got-want) > 1e-9 {
					t.Errorf("rate at %v = %v, want %v", at.Positions[j], got, want)
				}
			}
		})
	}
}

func TestOneHotPicksNearestCell(t *testing.T) {
	a := newAgent(t, environment.DefaultConfig())
	cfg := DefaultConfig()
	cfg.Description = OneHot
	cfg.Centres = []r2.Vec{{X: 0.2, Y: 0.5}, {X: 0.8, Y: 0.5}}
	pc := newCells(t, a, cfg)

	fr, err := pc.FiringRates(ExplicitPositions{Positions: []r2.Vec{{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.9}}})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{1, 0}, {0, 1}}
	for i := range want {
		for j := range want[i] {
			if fr.At(i, j) != want[i][j] {
				t.Errorf("rate[%d][%d] = %v, want %v", i, j, fr.At(i, j), want[i][j])
			}
		}
	}
}

func TestRatesAreScaled(t *testing.T) {
	a := newAgent(t, environment.DefaultConfig())
	cfg := DefaultConfig()
	cfg.Centres = []r2.Vec{{X: 0.5, Y: 0.5}}
	cfg.MinRate, cfg.MaxRate = 1, 3
	pc := newCells(t, a, cfg)

	fr, err := pc.FiringRates(ExplicitPositions{Positions: []r2.Vec{{X: 0.5, Y: 0.5}, {X: 0.01, Y: 0.99}}})
	if err != nil {
		t.Fatal(err)
	}
	if got := fr.At(0, 0); math.Abs(got-3) > 1e-12 {
		t.Errorf("peak rate = %v, want 3", got)
	}
	if got := fr.At(0, 1); got < 1 || got > 1.01 {
		t.Errorf("far rate = %v, want close to 1", got)
	}
}

func TestWallBlocksLineOfSight(t *testing.T) {
	a := newAgent(t, environment.DefaultConfig())
	if err := a.Environment().AddWall(geometry.Seg(0.5, 0, 0.5, 0.7)); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.WallGeometry = environment.LineOfSight
	cfg.Centres = []r2.Vec{{X: 0.4, Y: 0.3}}
	pc := newCells(t, a, cfg)

	fr, err := pc.FiringRates(ExplicitPositions{Positions: []r2.Vec{{X: 0.6, Y: 0.3}, {X: 0.4, Y: 0.4}}})
	if err != nil {
		t.Fatal(err)
	}
	if got := fr.At(0, 0); got != 0 {
		t.Errorf("rate behind the wall = %v, want 0", got)
	}
	if got := fr.At(0, 1); !(got > 0.8) {
		t.Errorf("visible rate = %v, want close to 1", got)
	}
}

func TestAllDiscretePositions(t *testing.T) {
	cfg := environment.DefaultConfig()
	cfg.DX = 0.1
	a := newAgent(t, cfg)
	pc := newCells(t, a, DefaultConfig())

	fr, err := pc.FiringRates(AllDiscretePositions{})
	if err != nil {
		t.Fatal(err)
	}
	if r, c := fr.Dims(); r != 10 || c != 100 {
		t.Errorf("dims = %dx%d, want 10x100", r, c)
	}
}

func TestUpdateRecordsCurrentState(t *testing.T) {
	a := newAgent(t, environment.DefaultConfig())
	pc := newCells(t, a, DefaultConfig())
	if len(pc.Centres()) != 10 {
		t.Fatalf("got %d centres, want 10", len(pc.Centres()))
	}

	for i := 0; i < 3; i++ {
		if err := a.Update(0.01, nil); err != nil {
			t.Fatal(err)
		}
		if err := pc.Update(); err != nil {
			t.Fatal(err)
		}
	}

	hist := pc.History()
	if len(hist) != 3 {
		t.Fatalf("history has %d snapshots, want 3", len(hist))
	}
	last, ok := pc.Last()
	if !ok || len(last.Rates) != 10 {
		t.Fatalf("Last = %+v, %v", last, ok)
	}
	if math.Abs(last.T-0.03) > 1e-12 {
		t.Errorf("T = %v, want 0.03", last.T)
	}

	fr, err := pc.FiringRates(CurrentState{})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range last.Rates {
		if fr.At(i, 0) != r {
			t.Errorf("cell %d: recorded %v, current %v", i, r, fr.At(i, 0))
		}
	}
}

func TestUpdateSamplesSpikes(t *testing.T) {
	a := newAgent(t, environment.DefaultConfig())
	if err := a.Place(r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{X: 0.05}); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Width = 0.05
	cfg.MaxRate = 500
	cfg.Centres = []r2.Vec{{X: 0.5, Y: 0.5}, {X: 0.05, Y: 0.95}}
	pc := newCells(t, a, cfg)

	for i := 0; i < 20; i++ {
		if err := a.Update(0.01, nil); err != nil {
			t.Fatal(err)
		}
		if err := pc.Update(); err != nil {
			t.Fatal(err)
		}
	}

	for i, snap := range pc.History() {
		if len(snap.Spikes) != 2 {
			t.Fatalf("snapshot %d has %d spikes, want 2", i, len(snap.Spikes))
		}
		// dt*rate is well above 1 at the agent and effectively 0 far away.
		if !snap.Spikes[0] {
			t.Errorf("snapshot %d: cell at the agent did not spike (rate %v)", i, snap.Rates[0])
		}
		if snap.Spikes[1] {
			t.Errorf("snapshot %d: distant cell spiked (rate %v)", i, snap.Rates[1])
		}
	}
}

func TestNewPlaceCellsErrors(t *testing.T) {
	periodic := environment.DefaultConfig()
	periodic.BoundaryConditions = environment.Periodic

	tests := []struct {
		name   string
		env    environment.Config
		mutate func(*Config)
		want   error
	}{
		{"unknown description", environment.DefaultConfig(), func(c *Config) { c.Description = "square" }, ErrUnknownDescription},
		{"zero width", environment.DefaultConfig(), func(c *Config) { c.Width = 0 }, environment.ErrConfiguration},
		{"no cells", environment.DefaultConfig(), func(c *Config) { c.N = 0 }, environment.ErrConfiguration},
		{"unknown geometry", environment.DefaultConfig(), func(c *Config) { c.WallGeometry = "manhattan" }, environment.ErrConfiguration},
		{"periodic line of sight", periodic, func(c *Config) { c.WallGeometry = environment.LineOfSight }, environment.ErrConfiguration},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := NewPlaceCells(newAgent(t, tc.env), cfg, rand.New(rand.NewSource(1)))
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPeriodicDefaultsToEuclidean(t *testing.T) {
	cfg := environment.DefaultConfig()
	cfg.BoundaryConditions = environment.Periodic
	pc := newCells(t, newAgent(t, cfg), DefaultConfig())
	if g := pc.Config().WallGeometry; g != environment.Euclidean {
		t.Errorf("wall geometry = %q, want euclidean", g)
	}
	if _, err := pc.FiringRates(CurrentState{}); err != nil {
		t.Errorf("FiringRates: %v", err)
	}
}
