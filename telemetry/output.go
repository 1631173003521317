package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/arena/config"
)

// HistoryRecord is one agent's recorded state at one tick.
type HistoryRecord struct {
	Tick   int32   `csv:"tick"`
	Agent  uint32  `csv:"agent"`
	T      float64 `csv:"t"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	VX     float64 `csv:"vx"`
	VY     float64 `csv:"vy"`
	RotVel float64 `csv:"rot_vel"`
}

// csvFile writes the header row only on the first write.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir   string
	runID uuid.UUID

	history csvFile
	stats   csvFile
	perf    csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, runID uuid.UUID) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: runID}
	files := []struct {
		name string
		dst  *csvFile
	}{
		{"history.csv", &om.history},
		{"stats.csv", &om.stats},
		{"perf.csv", &om.perf},
	}
	for _, fd := range files {
		f, err := os.Create(filepath.Join(dir, fd.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", fd.name, err)
		}
		fd.dst.f = f
	}

	if err := os.WriteFile(filepath.Join(dir, "run.txt"), []byte(runID.String()+"\n"), 0644); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing run.txt: %w", err)
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteHistory appends agent records to history.csv.
func (om *OutputManager) WriteHistory(records []HistoryRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.history.write(records); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// WriteStats writes a window stats record to stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.stats.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(om.runID.String(), windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// RunID returns the run identifier, or the zero UUID when output is disabled.
func (om *OutputManager) RunID() uuid.UUID {
	if om == nil {
		return uuid.Nil
	}
	return om.runID
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{&om.history, &om.stats, &om.perf} {
		if c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.f = nil
	}
	return firstErr
}
