package game

import (
	"context"
	"crash_backend/internal/model"
	"log"
)

// CashOut settles the wager in the engine, then credits the payout.
// The engine decides success; the credit runs in its own transaction.
func (s *serv) CashOut(ctx context.Context, userID int) (*model.CashOutAck, error) {
	result, err := s.eng.CashOut(playerID(userID))
	if err != nil {
		return nil, err
	}

	var balance float64
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		balance, err = s.userRepo.GetBalance(txCtx, userID)
		if err != nil {
			return err
		}
		balance += result.Payout
		return s.userRepo.UpdateBalance(txCtx, userID, balance)
	})
	if err != nil {
		// The wager is settled either way; a failed credit is a bookkeeping
		// incident, not a game-state one.
		log.Printf("cash out: credit failed for user %d, payout %.2f: %v", userID, result.Payout, err)
		return nil, err
	}

	return &model.CashOutAck{
		RoundID:    result.RoundID,
		Multiplier: result.Multiplier,
		Payout:     result.Payout,
		Balance:    balance,
	}, nil
}
