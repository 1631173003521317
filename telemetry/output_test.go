package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/arena/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("", uuid.New())
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Every method is nil-safe.
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteHistory([]HistoryRecord{{}}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.RunID() != uuid.Nil {
		t.Error("disabled manager should report no dir and a nil run ID")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManager_WritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	runID := uuid.New()
	om, err := NewOutputManager(dir, runID)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	for tick := int32(1); tick <= 3; tick++ {
		rec := HistoryRecord{Tick: tick, Agent: 0, T: float64(tick) * 0.01, X: 0.5, Y: 0.5}
		if err := om.WriteHistory([]HistoryRecord{rec}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteStats(WindowStats{RunID: runID.String(), WindowEndTick: 3}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{}, 3); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "history.csv"))
	if err != nil {
		t.Fatal(err)
	}
	var back []HistoryRecord
	if err := gocsv.UnmarshalBytes(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 3 || back[2].Tick != 3 {
		t.Errorf("history = %+v, want 3 rows with a single header", back)
	}
	if n := strings.Count(string(data), "tick,"); n != 1 {
		t.Errorf("history.csv has %d header rows, want 1", n)
	}

	run, err := os.ReadFile(filepath.Join(dir, "run.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(run)) != runID.String() {
		t.Errorf("run.txt = %q, want %s", run, runID)
	}

	stats, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(stats), runID.String()) {
		t.Error("stats.csv should carry the run ID")
	}

	for _, name := range []string{"perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
