package telemetry

import (
	"math"
	"testing"
)

func TestCollector_WindowTicks(t *testing.T) {
	tests := []struct {
		window, dt float64
		want       int32
	}{
		{10, 0.01, 1000},
		{1, 0.1, 10},
		{0.001, 0.01, 1},
	}
	for _, tt := range tests {
		c := NewCollector("run", tt.window, tt.dt)
		if got := c.WindowDurationTicks(); got != tt.want {
			t.Errorf("NewCollector(%v, %v) ticks = %d, want %d", tt.window, tt.dt, got, tt.want)
		}
	}
}

func TestCollector_ShouldFlush(t *testing.T) {
	c := NewCollector("run", 1, 0.1)
	if c.ShouldFlush(9) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at the window end")
	}
	c.Flush(10, 1, 0)
	if c.ShouldFlush(15) {
		t.Error("window should restart after a flush")
	}
}

func TestCollector_Flush(t *testing.T) {
	c := NewCollector("run-1", 1, 0.1)
	c.RecordStep(0.1, false, false)
	c.RecordStep(0.2, true, false)
	c.RecordStep(0.3, true, true)
	c.RecordStep(0.4, false, true)

	s := c.Flush(10, 2, 1.5)
	if s.RunID != "run-1" || s.WindowStartTick != 0 || s.WindowEndTick != 10 {
		t.Errorf("identity fields = %+v", s)
	}
	if math.Abs(s.SimTimeSec-1) > 1e-12 {
		t.Errorf("sim time = %v, want 1", s.SimTimeSec)
	}
	if s.Steps != 4 || s.Agents != 2 {
		t.Errorf("steps = %d, agents = %d", s.Steps, s.Agents)
	}
	if s.Collisions != 2 || s.Recoveries != 2 {
		t.Errorf("collisions = %d, recoveries = %d", s.Collisions, s.Recoveries)
	}
	// 2 collisions over 2 agents for 1 second
	if math.Abs(s.CollisionRate-1) > 1e-12 {
		t.Errorf("collision rate = %v, want 1", s.CollisionRate)
	}
	if math.Abs(s.SpeedMean-0.25) > 1e-12 {
		t.Errorf("speed mean = %v, want 0.25", s.SpeedMean)
	}
	if s.DistanceTravelled != 1.5 {
		t.Errorf("distance = %v, want 1.5", s.DistanceTravelled)
	}

	next := c.Flush(20, 2, 1.5)
	if next.Steps != 0 || next.Collisions != 0 || next.WindowStartTick != 10 {
		t.Errorf("counters not reset: %+v", next)
	}
}
