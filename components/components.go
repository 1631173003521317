// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/arena/cells"
	"github.com/pthm-cable/arena/motion"
)

// Position represents an agent's position in metres.
type Position struct {
	X, Y float64
}

// Velocity represents an agent's recorded velocity in metres per second.
type Velocity struct {
	X, Y float64
}

// Rotation represents an agent's heading and rotational velocity.
type Rotation struct {
	Heading float64 // radians, [0, 2pi)
	AngVel  float64 // radians per second
}

// Motion ties an entity to the agent that moves it.
type Motion struct {
	ID    uint32
	Agent *motion.Agent

	// Per-tick outcome, refreshed by the motion system.
	Collided  bool
	Recovered bool
}

// Observer attaches a place cell population to an agent entity.
type Observer struct {
	Cells *cells.PlaceCells
	Rates []float64 // most recent firing rates, one per cell
}
