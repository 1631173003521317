// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Agent       AgentConfig       `yaml:"agent"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	PlaceCells  PlaceCellsConfig  `yaml:"place_cells"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// EnvironmentConfig describes the arena.
type EnvironmentConfig struct {
	Dimensionality     string       `yaml:"dimensionality"`      // "1D" or "2D"
	BoundaryConditions string       `yaml:"boundary_conditions"` // "solid" or "periodic"
	Scale              float64      `yaml:"scale"`               // metres
	Aspect             float64      `yaml:"aspect"`              // width/height, 2D only
	DX                 float64      `yaml:"dx"`                  // grid step for whole-arena queries
	Walls              []WallConfig `yaml:"walls"`               // interior walls, 2D only
}

// WallConfig is a wall as two [x, y] endpoints.
type WallConfig [2][2]float64

// AgentConfig holds the motion model parameters.
type AgentConfig struct {
	DT                              float64 `yaml:"dt"`
	SpeedMean                       float64 `yaml:"speed_mean"`
	SpeedStd                        float64 `yaml:"speed_std"`
	SpeedCoherenceTime              float64 `yaml:"speed_coherence_time"`
	RotationalVelocityStdDeg        float64 `yaml:"rotational_velocity_std_deg"`
	RotationalVelocityCoherenceTime float64 `yaml:"rotational_velocity_coherence_time"`
	Thigmotaxis                     float64 `yaml:"thigmotaxis"`
	WallsRepel                      bool    `yaml:"walls_repel"`
	WallRepelDistance               float64 `yaml:"wall_repel_distance"`
}

// SimulationConfig holds run-level settings.
type SimulationConfig struct {
	Agents         int       `yaml:"agents"`
	Seed           int64     `yaml:"seed"`
	MaxTicks       int32     `yaml:"max_ticks"`       // 0 runs forever
	TrajectoryFile string    `yaml:"trajectory_file"` // CSV with t,x,y columns; empty disables playback
	StartPosition  []float64 `yaml:"start_position"`  // empty for a random start

	// Drift steers every agent towards DriftVelocity; empty disables it.
	DriftVelocity      []float64 `yaml:"drift_velocity"`
	DriftStrengthRatio float64   `yaml:"drift_strength_ratio"`
}

// PlaceCellsConfig holds the observer population. N = 0 disables it.
type PlaceCellsConfig struct {
	N            int     `yaml:"n"`
	Description  string  `yaml:"description"`
	Widths       float64 `yaml:"widths"`
	WallGeometry string  `yaml:"wall_geometry"` // empty picks geodesic, or euclidean when periodic
	MinFR        float64 `yaml:"min_fr"`
	MaxFR        float64 `yaml:"max_fr"`
}

// TelemetryConfig holds output and statistics settings.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds of simulated time
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks
	HistoryEvery        int     `yaml:"history_every"`         // write every Nth tick to history.csv
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	RotationalVelocityStd float64 // Agent.RotationalVelocityStdDeg in radians
	StatsWindowTicks      int32   // Telemetry.StatsWindow / Agent.DT, at least 1
	PlaceCellsEnabled     bool
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate checks value ranges. Geometry combinations that depend on the
// wall list are checked again when the environment is built.
func (c *Config) Validate() error {
	e := c.Environment
	switch e.Dimensionality {
	case "1D", "2D":
	default:
		return fmt.Errorf("%w: environment.dimensionality %q", ErrInvalid, e.Dimensionality)
	}
	switch e.BoundaryConditions {
	case "solid", "periodic":
	default:
		return fmt.Errorf("%w: environment.boundary_conditions %q", ErrInvalid, e.BoundaryConditions)
	}
	if len(e.Walls) > 0 && e.Dimensionality != "2D" {
		return fmt.Errorf("%w: environment.walls need a 2D environment", ErrInvalid)
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"environment.scale", e.Scale},
		{"environment.aspect", e.Aspect},
		{"environment.dx", e.DX},
		{"agent.dt", c.Agent.DT},
		{"agent.speed_mean", c.Agent.SpeedMean},
		{"agent.speed_coherence_time", c.Agent.SpeedCoherenceTime},
		{"agent.rotational_velocity_coherence_time", c.Agent.RotationalVelocityCoherenceTime},
		{"agent.wall_repel_distance", c.Agent.WallRepelDistance},
		{"telemetry.stats_window", c.Telemetry.StatsWindow},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, f.name, f.v)
		}
	}
	if !(c.Agent.Thigmotaxis >= 0 && c.Agent.Thigmotaxis <= 1) {
		return fmt.Errorf("%w: agent.thigmotaxis must be in [0, 1], got %v", ErrInvalid, c.Agent.Thigmotaxis)
	}
	if c.Simulation.Agents < 1 {
		return fmt.Errorf("%w: simulation.agents must be at least 1, got %d", ErrInvalid, c.Simulation.Agents)
	}
	if c.Simulation.MaxTicks < 0 {
		return fmt.Errorf("%w: simulation.max_ticks must not be negative", ErrInvalid)
	}
	if n := len(c.Simulation.StartPosition); n != 0 && n != 2 {
		return fmt.Errorf("%w: simulation.start_position needs [x, y], got %d values", ErrInvalid, n)
	}
	if n := len(c.Simulation.DriftVelocity); n != 0 && n != 2 {
		return fmt.Errorf("%w: simulation.drift_velocity needs [vx, vy], got %d values", ErrInvalid, n)
	}
	if len(c.Simulation.DriftVelocity) == 2 && (!(c.Simulation.DriftStrengthRatio > 0) || math.IsInf(c.Simulation.DriftStrengthRatio, 0)) {
		return fmt.Errorf("%w: simulation.drift_strength_ratio must be positive, got %v", ErrInvalid, c.Simulation.DriftStrengthRatio)
	}
	if c.PlaceCells.N < 0 {
		return fmt.Errorf("%w: place_cells.n must not be negative", ErrInvalid)
	}
	if c.PlaceCells.N > 0 && c.PlaceCells.MaxFR < c.PlaceCells.MinFR {
		return fmt.Errorf("%w: place_cells.max_fr below min_fr", ErrInvalid)
	}
	if c.Telemetry.HistoryEvery < 0 {
		return fmt.Errorf("%w: telemetry.history_every must not be negative", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.RotationalVelocityStd = c.Agent.RotationalVelocityStdDeg * math.Pi / 180
	c.Derived.StatsWindowTicks = int32(math.Max(1, math.Round(c.Telemetry.StatsWindow/c.Agent.DT)))
	c.Derived.PlaceCellsEnabled = c.PlaceCells.N > 0
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
