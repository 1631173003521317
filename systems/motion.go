// Package systems contains ECS systems for the simulation.
package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/geometry"
	"github.com/pthm-cable/arena/motion"
)

// MotionSystem advances every agent by one step and mirrors the recorded
// state into its components.
type MotionSystem struct {
	filter ecs.Filter4[components.Position, components.Velocity, components.Rotation, components.Motion]
	dt     float64
	drift  *motion.Drift
}

// NewMotionSystem creates a motion system stepping agents by dt seconds.
func NewMotionSystem(w *ecs.World, dt float64) *MotionSystem {
	return &MotionSystem{
		filter: *ecs.NewFilter4[components.Position, components.Velocity, components.Rotation, components.Motion](w),
		dt:     dt,
	}
}

// SetDrift steers every agent towards d on subsequent updates. nil disables drift.
func (s *MotionSystem) SetDrift(d *motion.Drift) {
	s.drift = d
}

// Update runs the motion system. It stops at the first agent whose step fails.
func (s *MotionSystem) Update(w *ecs.World) error {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, rot, m := query.Get()

		if err := m.Agent.Update(s.dt, s.drift); err != nil {
			query.Close()
			return fmt.Errorf("agent %d: %w", m.ID, err)
		}

		rec, _ := m.Agent.LastRecord()
		pos.X, pos.Y = rec.Pos.X, rec.Pos.Y
		vel.X, vel.Y = rec.Vel.X, rec.Vel.Y
		rot.AngVel = rec.RotVel
		if vel.X != 0 || vel.Y != 0 {
			rot.Heading = geometry.Angle(rec.Vel)
		}

		step := m.Agent.LastStep()
		m.Collided = step.Collided
		m.Recovered = step.Recovered
	}
	return nil
}
