package env

import (
	"crash_backend/internal/config"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// engineYAML mirrors the "engine" section of config.yaml. Durations are
// time.ParseDuration strings.
type engineYAML struct {
	Engine struct {
		WaitTimeMin           string  `yaml:"wait_time_min"`
		WaitTimeMax           string  `yaml:"wait_time_max"`
		Countdown             string  `yaml:"countdown"`
		TickInterval          string  `yaml:"tick_interval"`
		UpdateInterval        string  `yaml:"update_interval"`
		MaxFlightTime         string  `yaml:"max_flight_time"`
		CrashedDelay          string  `yaml:"crashed_delay"`
		GrowthRate            float64 `yaml:"growth_rate"`
		MultiplierCap         float64 `yaml:"multiplier_cap"`
		GracePeriod           string  `yaml:"grace_period"`
		CrashTimeWeight       float64 `yaml:"crash_time_weight"`
		CrashMultiplierWeight float64 `yaml:"crash_multiplier_weight"`
		MaxCrashChance        float64 `yaml:"max_crash_chance"`
		HistorySize           int     `yaml:"history_size"`
		MinAutoCashOut        float64 `yaml:"min_auto_cash_out"`
	} `yaml:"engine"`
}

type engineConfig struct {
	waitTimeMin           time.Duration
	waitTimeMax           time.Duration
	countdown             time.Duration
	tickInterval          time.Duration
	updateInterval        time.Duration
	maxFlightTime         time.Duration
	crashedDelay          time.Duration
	growthRate            float64
	multiplierCap         float64
	gracePeriod           time.Duration
	crashTimeWeight       float64
	crashMultiplierWeight float64
	maxCrashChance        float64
	historySize           int
	minAutoCashOut        float64
}

// NewEngineConfigFromYAML reads engine tunables from the given YAML file,
// applying defaults for omitted fields. Shape errors fail here; semantic
// validation (monotonic wait range etc.) fails in engine.New.
func NewEngineConfigFromYAML(path string) (config.EngineConfig, error) {
	raw := engineYAML{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read engine config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse engine config: %w", err)
		}
	}

	cfg := &engineConfig{}

	e := raw.Engine
	if cfg.waitTimeMin, err = parseDuration(e.WaitTimeMin, 5*time.Second); err != nil {
		return nil, fmt.Errorf("wait_time_min: %w", err)
	}
	if cfg.waitTimeMax, err = parseDuration(e.WaitTimeMax, 10*time.Second); err != nil {
		return nil, fmt.Errorf("wait_time_max: %w", err)
	}
	if cfg.countdown, err = parseDuration(e.Countdown, 5*time.Second); err != nil {
		return nil, fmt.Errorf("countdown: %w", err)
	}
	if cfg.tickInterval, err = parseDuration(e.TickInterval, 100*time.Millisecond); err != nil {
		return nil, fmt.Errorf("tick_interval: %w", err)
	}
	if cfg.updateInterval, err = parseDuration(e.UpdateInterval, time.Second); err != nil {
		return nil, fmt.Errorf("update_interval: %w", err)
	}
	if cfg.maxFlightTime, err = parseDuration(e.MaxFlightTime, 60*time.Second); err != nil {
		return nil, fmt.Errorf("max_flight_time: %w", err)
	}
	if cfg.crashedDelay, err = parseDuration(e.CrashedDelay, 3*time.Second); err != nil {
		return nil, fmt.Errorf("crashed_delay: %w", err)
	}
	if cfg.gracePeriod, err = parseDuration(e.GracePeriod, 2*time.Second); err != nil {
		return nil, fmt.Errorf("grace_period: %w", err)
	}

	cfg.growthRate = defaultFloat(e.GrowthRate, 0.12)
	cfg.multiplierCap = defaultFloat(e.MultiplierCap, 250.0)
	cfg.crashTimeWeight = defaultFloat(e.CrashTimeWeight, 0.002)
	cfg.crashMultiplierWeight = defaultFloat(e.CrashMultiplierWeight, 0.004)
	cfg.maxCrashChance = defaultFloat(e.MaxCrashChance, 0.08)
	cfg.minAutoCashOut = defaultFloat(e.MinAutoCashOut, 1.01)
	cfg.historySize = e.HistorySize
	if cfg.historySize == 0 {
		cfg.historySize = 20
	}

	return cfg, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func defaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func (cfg *engineConfig) WaitTimeMin() time.Duration    { return cfg.waitTimeMin }
func (cfg *engineConfig) WaitTimeMax() time.Duration    { return cfg.waitTimeMax }
func (cfg *engineConfig) Countdown() time.Duration      { return cfg.countdown }
func (cfg *engineConfig) TickInterval() time.Duration   { return cfg.tickInterval }
func (cfg *engineConfig) UpdateInterval() time.Duration { return cfg.updateInterval }
func (cfg *engineConfig) MaxFlightTime() time.Duration  { return cfg.maxFlightTime }
func (cfg *engineConfig) CrashedDelay() time.Duration   { return cfg.crashedDelay }
func (cfg *engineConfig) GrowthRate() float64           { return cfg.growthRate }
func (cfg *engineConfig) MultiplierCap() float64        { return cfg.multiplierCap }
func (cfg *engineConfig) GracePeriod() time.Duration    { return cfg.gracePeriod }
func (cfg *engineConfig) CrashTimeWeight() float64      { return cfg.crashTimeWeight }
func (cfg *engineConfig) CrashMultiplierWeight() float64 {
	return cfg.crashMultiplierWeight
}
func (cfg *engineConfig) MaxCrashChance() float64 { return cfg.maxCrashChance }
func (cfg *engineConfig) HistorySize() int        { return cfg.historySize }
func (cfg *engineConfig) MinAutoCashOut() float64 { return cfg.minAutoCashOut }
