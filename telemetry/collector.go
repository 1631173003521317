package telemetry

// Collector accumulates per-step samples within time windows and produces WindowStats.
type Collector struct {
	runID               string
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Samples for current window
	speeds     []float64
	collisions int
	recoveries int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(runID string, windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec/dt + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		runID:               runID,
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordStep records one agent update.
func (c *Collector) RecordStep(speed float64, collided, recovered bool) {
	c.speeds = append(c.speeds, speed)
	if collided {
		c.collisions++
	}
	if recovered {
		c.recoveries++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// distance is the cumulative distance travelled by all agents.
func (c *Collector) Flush(currentTick int32, agents int, distance float64) WindowStats {
	mean, std, p10, p50, p90 := ComputeSpeedStats(c.speeds)

	var collisionRate float64
	if elapsed := float64(currentTick-c.windowStartTick) * c.dt; elapsed > 0 && agents > 0 {
		collisionRate = float64(c.collisions) / (elapsed * float64(agents))
	}

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Agents: agents,
		Steps:  len(c.speeds),

		SpeedMean: mean,
		SpeedStd:  std,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		Collisions:    c.collisions,
		Recoveries:    c.recoveries,
		CollisionRate: collisionRate,

		DistanceTravelled: distance,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.speeds = c.speeds[:0]
	c.collisions = 0
	c.recoveries = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
