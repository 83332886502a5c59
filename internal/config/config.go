package config

import (
	"time"

	"github.com/joho/godotenv"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

// EngineConfig holds every tunable of the round engine. Loaded from
// config.yaml; the engine itself carries no magic numbers.
type EngineConfig interface {
	// Wait phase duration is drawn uniformly from [WaitTimeMin, WaitTimeMax].
	WaitTimeMin() time.Duration
	WaitTimeMax() time.Duration
	Countdown() time.Duration
	TickInterval() time.Duration
	// UpdateInterval is the time-based throttle for multiplier broadcasts.
	UpdateInterval() time.Duration
	MaxFlightTime() time.Duration
	CrashedDelay() time.Duration

	GrowthRate() float64
	MultiplierCap() float64

	GracePeriod() time.Duration
	CrashTimeWeight() float64
	CrashMultiplierWeight() float64
	MaxCrashChance() float64

	HistorySize() int
	MinAutoCashOut() float64
}

type HTTPConfig interface {
	Address() string
}

type PGConfig interface {
	DSN() string
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
	RefreshTokenDuration() time.Duration
}

// AdminConfig gates the force-crash endpoint. Authorization lives here,
// outside the engine.
type AdminConfig interface {
	Token() string
}
