package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseMotion      = "motion"
	PhaseObservation = "observation"
	PhaseTelemetry   = "telemetry"
)

// Phases lists every phase in tick order.
var Phases = []string{PhaseMotion, PhaseObservation, PhaseTelemetry}

// tickTiming is the wall time spent in one tick and in each of its phases.
type tickTiming struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector keeps the timings of the last windowSize ticks.
type PerfCollector struct {
	ring  []tickTiming
	next  int
	count int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      string
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
// Non-positive sizes fall back to 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickTiming, windowSize)}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickTiming{phases: make(map[string]time.Duration, len(Phases))}
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the running phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.phase = ""
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// PerfStats summarises the ticks in the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	// Share of the average tick spent in each phase, in percent.
	PhasePct map[string]float64
}

// Stats aggregates the window. An empty window gives zero durations.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{PhasePct: make(map[string]float64)}
	if p.count == 0 {
		return stats
	}

	var total time.Duration
	phaseTotal := make(map[string]time.Duration)
	for i, tt := range p.ring[:p.count] {
		total += tt.total
		if i == 0 || tt.total < stats.MinTickDuration {
			stats.MinTickDuration = tt.total
		}
		stats.MaxTickDuration = max(stats.MaxTickDuration, tt.total)
		for name, d := range tt.phases {
			phaseTotal[name] += d
		}
	}

	stats.AvgTickDuration = total / time.Duration(p.count)
	if total > 0 {
		stats.TicksPerSecond = float64(p.count) / total.Seconds()
		for name, d := range phaseTotal {
			stats.PhasePct[name] = 100 * float64(d) / float64(total)
		}
	}
	return stats
}

// LogStats logs the tick timings and the share of each known phase.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, phase := range Phases {
		attrs = append(attrs, phase+"_pct", float64(int(s.PhasePct[phase]*10))/10)
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	RunID          string  `csv:"run_id"`
	WindowEnd      int32   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	MotionPct      float64 `csv:"motion_pct"`
	ObservationPct float64 `csv:"observation_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(runID string, windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		RunID:          runID,
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		MotionPct:      s.PhasePct[PhaseMotion],
		ObservationPct: s.PhasePct[PhaseObservation],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
