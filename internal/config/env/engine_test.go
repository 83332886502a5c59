package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEngineConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
engine:
  wait_time_min: 2s
  wait_time_max: 4s
  countdown: 3s
  tick_interval: 50ms
  update_interval: 250ms
  max_flight_time: 30s
  crashed_delay: 2s
  growth_rate: 0.2
  multiplier_cap: 500
  grace_period: 1s
  crash_time_weight: 0.01
  crash_multiplier_weight: 0.02
  max_crash_chance: 0.1
  history_size: 50
  min_auto_cash_out: 1.1
`)

	cfg, err := NewEngineConfigFromYAML(path)
	if err != nil {
		t.Fatalf("NewEngineConfigFromYAML: %v", err)
	}

	if got := cfg.WaitTimeMin(); got != 2*time.Second {
		t.Errorf("WaitTimeMin = %v, want 2s", got)
	}
	if got := cfg.WaitTimeMax(); got != 4*time.Second {
		t.Errorf("WaitTimeMax = %v, want 4s", got)
	}
	if got := cfg.TickInterval(); got != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", got)
	}
	if got := cfg.UpdateInterval(); got != 250*time.Millisecond {
		t.Errorf("UpdateInterval = %v, want 250ms", got)
	}
	if got := cfg.GrowthRate(); got != 0.2 {
		t.Errorf("GrowthRate = %v, want 0.2", got)
	}
	if got := cfg.MultiplierCap(); got != 500.0 {
		t.Errorf("MultiplierCap = %v, want 500", got)
	}
	if got := cfg.HistorySize(); got != 50 {
		t.Errorf("HistorySize = %d, want 50", got)
	}
	if got := cfg.MinAutoCashOut(); got != 1.1 {
		t.Errorf("MinAutoCashOut = %v, want 1.1", got)
	}
}

func TestEngineConfigDefaults(t *testing.T) {
	// An empty engine section falls back to defaults across the board.
	path := writeConfig(t, "engine: {}\n")

	cfg, err := NewEngineConfigFromYAML(path)
	if err != nil {
		t.Fatalf("NewEngineConfigFromYAML: %v", err)
	}

	if got := cfg.WaitTimeMin(); got != 5*time.Second {
		t.Errorf("default WaitTimeMin = %v, want 5s", got)
	}
	if got := cfg.WaitTimeMax(); got != 10*time.Second {
		t.Errorf("default WaitTimeMax = %v, want 10s", got)
	}
	if got := cfg.TickInterval(); got != 100*time.Millisecond {
		t.Errorf("default TickInterval = %v, want 100ms", got)
	}
	if got := cfg.GrowthRate(); got != 0.12 {
		t.Errorf("default GrowthRate = %v, want 0.12", got)
	}
	if got := cfg.MultiplierCap(); got != 250.0 {
		t.Errorf("default MultiplierCap = %v, want 250", got)
	}
	if got := cfg.MaxCrashChance(); got != 0.08 {
		t.Errorf("default MaxCrashChance = %v, want 0.08", got)
	}
	if got := cfg.HistorySize(); got != 20 {
		t.Errorf("default HistorySize = %d, want 20", got)
	}
	if got := cfg.MinAutoCashOut(); got != 1.01 {
		t.Errorf("default MinAutoCashOut = %v, want 1.01", got)
	}
}

func TestEngineConfigMissingFile(t *testing.T) {
	cfg, err := NewEngineConfigFromYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got %v", err)
	}
	if got := cfg.CrashedDelay(); got != 3*time.Second {
		t.Errorf("default CrashedDelay = %v, want 3s", got)
	}
}

func TestEngineConfigBadDuration(t *testing.T) {
	path := writeConfig(t, "engine:\n  tick_interval: fast\n")
	if _, err := NewEngineConfigFromYAML(path); err == nil {
		t.Fatal("expected an error for an unparsable duration")
	}
}

func TestEngineConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "engine: [not a mapping\n")
	if _, err := NewEngineConfigFromYAML(path); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}
