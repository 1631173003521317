// Package cells evaluates spatial receptive fields against the agent, the
// whole arena or an explicit batch of positions.
package cells

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/environment"
	"github.com/pthm-cable/arena/motion"
)

// Query selects the positions a population is evaluated at. It is one of
// CurrentState, AllDiscretePositions or ExplicitPositions.
type Query interface {
	positions(agent *motion.Agent, env *environment.Environment) []r2.Vec
}

// CurrentState evaluates at the agent's most recently recorded position.
type CurrentState struct{}

// AllDiscretePositions evaluates at every cell centre of the arena grid.
type AllDiscretePositions struct{}

// ExplicitPositions evaluates at the given positions.
type ExplicitPositions struct {
	Positions []r2.Vec
}

func (CurrentState) positions(agent *motion.Agent, _ *environment.Environment) []r2.Vec {
	return []r2.Vec{agent.Position()}
}

func (AllDiscretePositions) positions(_ *motion.Agent, env *environment.Environment) []r2.Vec {
	return env.DiscretePositions()
}

func (q ExplicitPositions) positions(_ *motion.Agent, _ *environment.Environment) []r2.Vec {
	return q.Positions
}
