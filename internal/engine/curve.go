package engine

import (
	"math"
	"time"
)

// Multiplier converts elapsed flight time to the payout multiplier:
// clamp(exp(rate*t), 1, cap). This is the single source of truth for both
// live ticks and recomputation at cash-out time.
func Multiplier(rate float64, elapsed time.Duration, cap float64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	m := math.Exp(rate * elapsed.Seconds())
	if m < 1.0 {
		m = 1.0
	}
	if m > cap {
		m = cap
	}
	return m
}

// CrashParams are the tunables of the per-tick crash decision.
type CrashParams struct {
	// GracePeriod is the flight time with zero crash probability.
	GracePeriod time.Duration
	// TimeWeight scales seconds elapsed beyond the grace period.
	TimeWeight float64
	// MultiplierWeight scales the multiplier's excess over 1.00.
	MultiplierWeight float64
	// MaxChance caps the per-tick probability.
	MaxChance float64
}

// CrashChance computes the per-tick crash probability. It is zero within the
// grace period, non-decreasing in both elapsed time and multiplier, and
// never leaves [0, MaxChance].
func CrashChance(p CrashParams, elapsed time.Duration, multiplier float64) float64 {
	if elapsed <= p.GracePeriod {
		return 0
	}
	t := (elapsed - p.GracePeriod).Seconds()
	excess := multiplier - 1.0
	if excess < 0 {
		excess = 0
	}
	chance := p.TimeWeight*t + p.MultiplierWeight*excess
	if chance < 0 {
		return 0
	}
	if chance > p.MaxChance {
		return p.MaxChance
	}
	return chance
}
