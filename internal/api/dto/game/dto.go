package game

type BetRequest struct {
	Amount      float64 `json:"amount"`                  // stake, positive
	AutoCashOut float64 `json:"auto_cash_out,omitempty"` // 0 = no auto cash-out
}

type BetResponse struct {
	RoundID  int64   `json:"round_id"` // round the wager plays in
	Amount   float64 `json:"amount"`
	Balance  float64 `json:"balance"`
	Replaced float64 `json:"replaced,omitempty"` // refunded previous stake
}

type CashOutResponse struct {
	RoundID    int64   `json:"round_id"`
	Multiplier float64 `json:"multiplier"`
	Payout     float64 `json:"payout"`
	Balance    float64 `json:"balance"`
}

type StateResponse struct {
	State          string  `json:"state"`
	RoundID        int64   `json:"round_id"`
	Multiplier     float64 `json:"multiplier"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	ActiveWagers   int     `json:"active_wagers"`
}

type HistoryResponse struct {
	Multipliers []float64 `json:"multipliers"` // newest first
}

type StatsResponse struct {
	TotalRounds       int64   `json:"total_rounds"`
	TotalWagered      float64 `json:"total_wagered"`
	TotalPaidOut      float64 `json:"total_paid_out"`
	AverageMultiplier float64 `json:"average_multiplier"`
	ActiveWagers      int     `json:"active_wagers"`
}

type CrashRequest struct {
	Reason string `json:"reason"`
}

// EventEnvelope wraps a bus event for the websocket stream.
type EventEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type StateChangedData struct {
	State            string  `json:"state"`
	RoundID          int64   `json:"round_id"`
	Multiplier       float64 `json:"multiplier,omitempty"`
	ElapsedSeconds   float64 `json:"elapsed_seconds,omitempty"`
	WaitSeconds      float64 `json:"wait_seconds,omitempty"`
	CountdownSeconds float64 `json:"countdown_seconds,omitempty"`
}

type MultiplierUpdateData struct {
	RoundID        int64   `json:"round_id"`
	Multiplier     float64 `json:"multiplier"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Timestamp      int64   `json:"timestamp_ms"`
	GrowthRate     float64 `json:"growth_rate"`
}

type AutoCashedOutData struct {
	RoundID    int64   `json:"round_id"`
	PlayerID   string  `json:"player_id"`
	BetAmount  float64 `json:"bet_amount"`
	Multiplier float64 `json:"multiplier"`
	Payout     float64 `json:"payout"`
}

type WagerOutcomeData struct {
	PlayerID   string  `json:"player_id"`
	BetAmount  float64 `json:"bet_amount"`
	Settled    bool    `json:"settled"`
	Payout     float64 `json:"payout,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

type RoundSettledData struct {
	RoundID         int64              `json:"round_id"`
	FinalMultiplier float64            `json:"final_multiplier"`
	Reason          string             `json:"reason"`
	Losers          []WagerOutcomeData `json:"losers"`
	Participants    []WagerOutcomeData `json:"participants"`
}
