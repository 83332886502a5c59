package converter

import (
	dto "crash_backend/internal/api/dto/game"
	"crash_backend/internal/model"
)

func ToBetRequest(req dto.BetRequest) model.BetRequest {
	return model.BetRequest{
		Amount:      req.Amount,
		AutoCashOut: req.AutoCashOut,
	}
}

func ToBetResponse(ack model.BetAck) dto.BetResponse {
	return dto.BetResponse{
		RoundID:  ack.RoundID,
		Amount:   ack.Amount,
		Balance:  ack.Balance,
		Replaced: ack.Replaced,
	}
}

func ToCashOutResponse(ack model.CashOutAck) dto.CashOutResponse {
	return dto.CashOutResponse{
		RoundID:    ack.RoundID,
		Multiplier: ack.Multiplier,
		Payout:     ack.Payout,
		Balance:    ack.Balance,
	}
}

func ToStateResponse(snap model.Snapshot) dto.StateResponse {
	return dto.StateResponse{
		State:          string(snap.State),
		RoundID:        snap.RoundID,
		Multiplier:     snap.Multiplier,
		ElapsedSeconds: snap.Elapsed.Seconds(),
		ActiveWagers:   snap.ActiveWagers,
	}
}

func ToStatsResponse(stats model.Stats) dto.StatsResponse {
	return dto.StatsResponse{
		TotalRounds:       stats.TotalRounds,
		TotalWagered:      stats.TotalWagered,
		TotalPaidOut:      stats.TotalPaidOut,
		AverageMultiplier: stats.AverageMultiplier,
		ActiveWagers:      stats.ActiveWagers,
	}
}

// ToEventEnvelope flattens a bus event into the wire form the websocket
// stream pushes to clients.
func ToEventEnvelope(event model.Event) dto.EventEnvelope {
	envelope := dto.EventEnvelope{Type: string(event.Kind())}

	switch ev := event.(type) {
	case model.StateChangedEvent:
		envelope.Data = dto.StateChangedData{
			State:            string(ev.State),
			RoundID:          ev.RoundID,
			Multiplier:       ev.Multiplier,
			ElapsedSeconds:   ev.Elapsed.Seconds(),
			WaitSeconds:      ev.Wait.Seconds(),
			CountdownSeconds: ev.Countdown.Seconds(),
		}
	case model.MultiplierUpdateEvent:
		envelope.Data = dto.MultiplierUpdateData{
			RoundID:        ev.RoundID,
			Multiplier:     ev.Multiplier,
			ElapsedSeconds: ev.Elapsed.Seconds(),
			Timestamp:      ev.Timestamp.UnixMilli(),
			GrowthRate:     ev.GrowthRate,
		}
	case model.AutoCashedOutEvent:
		envelope.Data = dto.AutoCashedOutData{
			RoundID:    ev.RoundID,
			PlayerID:   ev.PlayerID,
			BetAmount:  ev.BetAmount,
			Multiplier: ev.Multiplier,
			Payout:     ev.Payout,
		}
	case model.RoundSettledEvent:
		envelope.Data = dto.RoundSettledData{
			RoundID:         ev.RoundID,
			FinalMultiplier: ev.FinalMultiplier,
			Reason:          ev.Reason,
			Losers:          toWagerOutcomes(ev.Losers),
			Participants:    toWagerOutcomes(ev.Participants),
		}
	}
	return envelope
}

func toWagerOutcomes(outcomes []model.WagerOutcome) []dto.WagerOutcomeData {
	result := make([]dto.WagerOutcomeData, len(outcomes))
	for i, o := range outcomes {
		result[i] = dto.WagerOutcomeData{
			PlayerID:   o.PlayerID,
			BetAmount:  o.BetAmount,
			Settled:    o.Settled,
			Payout:     o.Payout,
			Multiplier: o.Multiplier,
		}
	}
	return result
}
