package model

import "time"

// EventKind enumerates the closed set of events the engine emits.
type EventKind string

const (
	EventStateChanged     EventKind = "state_changed"
	EventMultiplierUpdate EventKind = "multiplier_update"
	EventAutoCashedOut    EventKind = "player_auto_cashed_out"
	EventRoundSettled     EventKind = "round_settled"
)

// Event is implemented by every payload published on the round event bus.
type Event interface {
	Kind() EventKind
}

// StateChangedEvent is emitted on every transition and on throttled flying ticks.
type StateChangedEvent struct {
	State      RoundState
	RoundID    int64
	Multiplier float64       // set while flying/crashed
	Elapsed    time.Duration // set while flying/crashed
	Wait       time.Duration // scheduled wait when entering waiting
	Countdown  time.Duration // scheduled countdown when entering starting
}

func (StateChangedEvent) Kind() EventKind { return EventStateChanged }

// MultiplierUpdateEvent carries the growth rate so observers can extrapolate
// between updates.
type MultiplierUpdateEvent struct {
	RoundID    int64
	Multiplier float64
	Elapsed    time.Duration
	Timestamp  time.Time
	GrowthRate float64
}

func (MultiplierUpdateEvent) Kind() EventKind { return EventMultiplierUpdate }

// AutoCashedOutEvent is emitted when a wager settles by reaching its threshold.
type AutoCashedOutEvent struct {
	RoundID    int64
	PlayerID   string
	BetAmount  float64
	Multiplier float64
	Payout     float64
}

func (AutoCashedOutEvent) Kind() EventKind { return EventAutoCashedOut }

// RoundSettledEvent partitions every wager of the crashed round.
// Losers is the unsettled subset of Participants.
type RoundSettledEvent struct {
	RoundID         int64
	FinalMultiplier float64
	Reason          string
	CrashedAt       time.Time
	Losers          []WagerOutcome
	Participants    []WagerOutcome
}

func (RoundSettledEvent) Kind() EventKind { return EventRoundSettled }
