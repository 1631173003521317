package sim

import (
	"fmt"

	"github.com/pthm-cable/arena/cells"
	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/environment"
	"github.com/pthm-cable/arena/geometry"
	"github.com/pthm-cable/arena/motion"
)

// buildEnvironment creates the arena and appends the configured interior walls.
func buildEnvironment(c config.EnvironmentConfig) (*environment.Environment, error) {
	env, err := environment.New(environment.Config{
		Dimensionality:     environment.Dimensionality(c.Dimensionality),
		BoundaryConditions: environment.Boundary(c.BoundaryConditions),
		Scale:              c.Scale,
		Aspect:             c.Aspect,
		DX:                 c.DX,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range c.Walls {
		if err := env.AddWall(geometry.Seg(w[0][0], w[0][1], w[1][0], w[1][1])); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// motionParams converts the agent section to motion parameters.
func motionParams(cfg *config.Config) motion.Params {
	a := cfg.Agent
	return motion.Params{
		DT:                              a.DT,
		SpeedMean:                       a.SpeedMean,
		SpeedStd:                        a.SpeedStd,
		SpeedCoherenceTime:              a.SpeedCoherenceTime,
		RotationalVelocityStd:           cfg.Derived.RotationalVelocityStd,
		RotationalVelocityCoherenceTime: a.RotationalVelocityCoherenceTime,
		Thigmotaxis:                     a.Thigmotaxis,
		WallsRepel:                      a.WallsRepel,
		WallRepelDistance:               a.WallRepelDistance,
	}
}

// placeCellConfig converts the place_cells section to a population config.
func placeCellConfig(c config.PlaceCellsConfig) cells.Config {
	return cells.Config{
		N:            c.N,
		Description:  cells.Description(c.Description),
		Width:        c.Widths,
		WallGeometry: environment.WallGeometry(c.WallGeometry),
		MinRate:      c.MinFR,
		MaxRate:      c.MaxFR,
	}
}

// spawnAgent creates an agent, applies the start position and trajectory, and
// adds its entity, with an observer when place cells are enabled.
func (s *Simulation) spawnAgent() error {
	id := s.nextID
	s.nextID++

	a, err := motion.New(s.env, motionParams(s.cfg), s.rng)
	if err != nil {
		return fmt.Errorf("agent %d: %w", id, err)
	}
	if s.opts.Start != nil {
		if err := a.Place(*s.opts.Start, a.State().Vel); err != nil {
			return fmt.Errorf("agent %d: %w", id, err)
		}
	}
	if s.opts.TrajectoryFile != "" {
		// Import failures are logged and leave the agent on the random policy.
		_ = a.ImportTrajectoryFile(s.opts.TrajectoryFile)
	}

	p := a.Position()
	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	rot := components.Rotation{}
	m := components.Motion{ID: id, Agent: a}
	entity := s.mapper.NewEntity(&pos, &vel, &rot, &m)

	if s.cfg.Derived.PlaceCellsEnabled {
		pc, err := cells.NewPlaceCells(a, placeCellConfig(s.cfg.PlaceCells), s.rng)
		if err != nil {
			return fmt.Errorf("agent %d place cells: %w", id, err)
		}
		s.obsMap.Add(entity, &components.Observer{Cells: pc})
	}

	s.agents = append(s.agents, a)
	return nil
}
