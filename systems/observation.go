package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/arena/components"
)

// ObservationSystem evaluates each observer's place cells at its agent.
// It runs after MotionSystem so rates reflect the latest positions.
type ObservationSystem struct {
	filter ecs.Filter1[components.Observer]
}

// NewObservationSystem creates a new observation system.
func NewObservationSystem(w *ecs.World) *ObservationSystem {
	return &ObservationSystem{
		filter: *ecs.NewFilter1[components.Observer](w),
	}
}

// Update runs the observation system.
func (s *ObservationSystem) Update(w *ecs.World) error {
	query := s.filter.Query()
	for query.Next() {
		obs := query.Get()
		if err := obs.Cells.Update(); err != nil {
			query.Close()
			return err
		}
		last, _ := obs.Cells.Last()
		obs.Rates = last.Rates
	}
	return nil
}
