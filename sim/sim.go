// Package sim runs agents through an environment tick by tick on an ECS world
// and streams their history and window statistics to the telemetry outputs.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/environment"
	"github.com/pthm-cable/arena/motion"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/telemetry"
)

// Options holds run settings that override or extend the config.
type Options struct {
	Seed           int64
	MaxTicks       int32         // 0 = use config; Run needs a positive value
	OutputDir      string        // empty disables file output
	TrajectoryFile string        // overrides simulation.trajectory_file
	LogStats       bool          // log window stats via slog
	StatsWindowSec float64       // 0 = use config
	Start          *r2.Vec       // overrides simulation.start_position
	Drift          *motion.Drift // overrides simulation.drift_velocity

	// StatsCallback, if set, receives every flushed window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete run state.
type Simulation struct {
	cfg   *config.Config
	opts  Options
	world *ecs.World
	rng   *rand.Rand
	env   *environment.Environment
	runID uuid.UUID

	mapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Motion,
	]
	obsMap *ecs.Map1[components.Observer]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Motion]

	motionSys *systems.MotionSystem
	obsSys    *systems.ObservationSystem

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	output        *telemetry.OutputManager

	agents       []*motion.Agent
	tick         int32
	nextID       uint32
	historyEvery int32
}

// New builds the environment and spawns every agent described by cfg.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	env, err := buildEnvironment(cfg.Environment)
	if err != nil {
		return nil, err
	}

	if opts.MaxTicks == 0 {
		opts.MaxTicks = cfg.Simulation.MaxTicks
	}
	if opts.TrajectoryFile == "" {
		opts.TrajectoryFile = cfg.Simulation.TrajectoryFile
	}
	if opts.Start == nil && len(cfg.Simulation.StartPosition) == 2 {
		opts.Start = &r2.Vec{X: cfg.Simulation.StartPosition[0], Y: cfg.Simulation.StartPosition[1]}
	}
	if opts.Drift == nil && len(cfg.Simulation.DriftVelocity) == 2 {
		opts.Drift = &motion.Drift{
			Velocity:      r2.Vec{X: cfg.Simulation.DriftVelocity[0], Y: cfg.Simulation.DriftVelocity[1]},
			StrengthRatio: cfg.Simulation.DriftStrengthRatio,
		}
	}
	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	world := ecs.NewWorld()
	s := &Simulation{
		cfg:   cfg,
		opts:  opts,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		env:   env,
		runID: uuid.New(),
		mapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Motion,
		](world),
		obsMap:       ecs.NewMap1[components.Observer](world),
		filter:       ecs.NewFilter3[components.Position, components.Velocity, components.Motion](world),
		motionSys:    systems.NewMotionSystem(world, cfg.Agent.DT),
		obsSys:       systems.NewObservationSystem(world),
		historyEvery: int32(cfg.Telemetry.HistoryEvery),
	}
	s.motionSys.SetDrift(opts.Drift)
	s.collector = telemetry.NewCollector(s.runID.String(), statsWindow, cfg.Agent.DT)
	s.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	for i := 0; i < cfg.Simulation.Agents; i++ {
		if err := s.spawnAgent(); err != nil {
			return nil, err
		}
	}

	s.output, err = telemetry.NewOutputManager(opts.OutputDir, s.runID)
	if err != nil {
		return nil, err
	}
	if err := s.output.WriteConfig(cfg); err != nil {
		s.output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	slog.Info("simulation created",
		"run_id", s.runID,
		"seed", opts.Seed,
		"dimensionality", env.Dimensionality(),
		"boundary", env.Boundary(),
		"walls", env.NumWalls(),
		"agents", len(s.agents),
		"place_cells", cfg.Derived.PlaceCellsEnabled,
		"output_dir", s.output.Dir(),
	)
	return s, nil
}

// Step runs a single tick: motion, then observation, then telemetry.
func (s *Simulation) Step() error {
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseMotion)
	if err := s.motionSys.Update(s.world); err != nil {
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}

	s.perfCollector.StartPhase(telemetry.PhaseObservation)
	if err := s.obsSys.Update(s.world); err != nil {
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}
	s.tick++

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	err := s.recordTelemetry()
	s.perfCollector.EndTick()
	if err != nil {
		return err
	}

	s.flushTelemetry()
	return nil
}

// Run steps until MaxTicks is reached.
func (s *Simulation) Run() error {
	if s.opts.MaxTicks <= 0 {
		return fmt.Errorf("sim: Run needs a positive tick limit")
	}
	for s.tick < s.opts.MaxTicks {
		if err := s.Step(); err != nil {
			return err
		}
	}
	slog.Info("max ticks reached", "tick", s.tick, "sim_time", s.SimTime())
	return nil
}

// Close flushes and closes the outputs.
func (s *Simulation) Close() error {
	return s.output.Close()
}

// Tick returns the current simulation tick.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// SimTime returns the elapsed simulated time in seconds.
func (s *Simulation) SimTime() float64 {
	return float64(s.tick) * s.cfg.Agent.DT
}

// Environment returns the arena.
func (s *Simulation) Environment() *environment.Environment {
	return s.env
}

// Agents returns the agents in spawn order.
func (s *Simulation) Agents() []*motion.Agent {
	return append([]*motion.Agent(nil), s.agents...)
}

// RunID returns the identifier written to run.txt and every stats row.
func (s *Simulation) RunID() uuid.UUID {
	return s.runID
}
