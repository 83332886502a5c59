package game

import (
	"context"
	"errors"
	"log"
	"strconv"

	"crash_backend/internal/model"
)

var (
	ErrInsufficientBalance = errors.New("not enough balance")
	ErrBetConflict         = errors.New("bet changed concurrently, try again")
)

// playerID maps an account to the opaque identifier the engine tracks
// wagers by.
func playerID(userID int) string {
	return strconv.Itoa(userID)
}

// PlaceBet debits the stake and registers the wager in one transaction.
// Replacing an earlier wager refunds its stake first; an engine rejection
// rolls the debit back.
func (s *serv) PlaceBet(ctx context.Context, userID int, bet model.BetRequest) (*model.BetAck, error) {
	var ack *model.BetAck
	pid := playerID(userID)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		prev, _, _ := s.eng.ActiveWager(pid)

		balance, err := s.userRepo.GetBalance(txCtx, userID)
		if err != nil {
			return err
		}

		// Funds check counts the refund of a wager about to be replaced.
		if balance+prev < bet.Amount {
			return ErrInsufficientBalance
		}

		replaced, err := s.eng.PlaceBet(pid, bet.Amount, bet.AutoCashOut)
		if err != nil {
			return err
		}

		// The engine is the authority on the refunded amount. If another
		// request replaced the wager after the funds check, the refund the
		// check counted no longer exists; reject instead of overdrawing.
		if replaced != prev {
			s.eng.RemovePlayer(pid)
			return ErrBetConflict
		}

		balance += replaced - bet.Amount
		if err := s.userRepo.UpdateBalance(txCtx, userID, balance); err != nil {
			// The debit rolls back; drop the orphaned wager too.
			s.eng.RemovePlayer(pid)
			log.Printf("place bet: balance update failed for user %d: %v", userID, err)
			return err
		}

		snap := s.eng.Snapshot()
		ack = &model.BetAck{
			RoundID:  snap.RoundID + 1,
			Amount:   bet.Amount,
			Balance:  balance,
			Replaced: replaced,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ack, nil
}
