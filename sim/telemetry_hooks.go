package sim

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/arena/telemetry"
)

// recordTelemetry feeds this tick's agent updates to the collector and
// writes history rows on sampled ticks.
func (s *Simulation) recordTelemetry() error {
	sample := s.historyEvery > 0 && s.tick%s.historyEvery == 0
	var rows []telemetry.HistoryRecord

	query := s.filter.Query()
	for query.Next() {
		pos, vel, m := query.Get()
		s.collector.RecordStep(math.Hypot(vel.X, vel.Y), m.Collided, m.Recovered)

		if !sample {
			continue
		}
		rec, _ := m.Agent.LastRecord()
		rows = append(rows, telemetry.HistoryRecord{
			Tick:   s.tick,
			Agent:  m.ID,
			T:      rec.T,
			X:      pos.X,
			Y:      pos.Y,
			VX:     vel.X,
			VY:     vel.Y,
			RotVel: rec.RotVel,
		})
	}

	return s.output.WriteHistory(rows)
}

// flushTelemetry emits the stats window once it is complete.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	var distance float64
	for _, a := range s.agents {
		distance += a.State().DistanceTravelled
	}

	stats := s.collector.Flush(s.tick, len(s.agents), distance)
	perfStats := s.perfCollector.Stats()

	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}

	if s.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
