package model

import "time"

// RoundState is the phase of the current play cycle.
type RoundState string

const (
	RoundWaiting  RoundState = "waiting"
	RoundStarting RoundState = "starting"
	RoundFlying   RoundState = "flying"
	RoundCrashed  RoundState = "crashed"
)

// BetRequest is a command to register a wager for the current round.
// AutoCashOut of 0 means no automatic cash-out.
type BetRequest struct {
	Amount      float64
	AutoCashOut float64
}

// BetAck is returned after a wager was registered and the balance debited.
type BetAck struct {
	RoundID  int64
	Amount   float64
	Balance  float64
	Replaced float64 // amount of a previous wager that was refunded
}

// CashOutResult is the engine-side outcome of a successful cash-out.
type CashOutResult struct {
	RoundID    int64
	Multiplier float64
	Payout     float64
}

// CashOutAck is the bookkeeping-side result, balance included.
type CashOutAck struct {
	RoundID    int64
	Multiplier float64
	Payout     float64
	Balance    float64
}

// Snapshot is a consistent read of the engine state.
type Snapshot struct {
	State        RoundState
	RoundID      int64
	Multiplier   float64
	Elapsed      time.Duration // only meaningful while flying/crashed
	ActiveWagers int
}

// Stats are running aggregates over all completed rounds.
type Stats struct {
	TotalRounds       int64
	TotalWagered      float64
	TotalPaidOut      float64
	AverageMultiplier float64
	ActiveWagers      int
}

// WagerOutcome records how a single wager ended when a round settled.
// Settled wagers carry the payout and the multiplier they cashed out at.
type WagerOutcome struct {
	PlayerID   string
	BetAmount  float64
	Settled    bool
	Payout     float64
	Multiplier float64
}

// RoundRecord is the settlement document persisted for audit.
type RoundRecord struct {
	RoundID         int64
	FinalMultiplier float64
	Reason          string
	CrashedAt       time.Time
	Outcomes        []WagerOutcome
}
