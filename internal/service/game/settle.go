package game

import (
	"context"
	"crash_backend/internal/model"
	"log"
	"strconv"
)

// onAutoCashedOut credits an automatic settlement. Runs off the engine's
// emission path so a slow database never stalls the tick.
func (s *serv) onAutoCashedOut(event model.Event) {
	ev, ok := event.(model.AutoCashedOutEvent)
	if !ok {
		return
	}
	go s.creditAutoCashOut(ev)
}

func (s *serv) creditAutoCashOut(ev model.AutoCashedOutEvent) {
	userID, err := strconv.Atoi(ev.PlayerID)
	if err != nil {
		log.Printf("auto cash out: bad player id %q: %v", ev.PlayerID, err)
		return
	}

	ctx := context.Background()
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		balance, err := s.userRepo.GetBalance(txCtx, userID)
		if err != nil {
			return err
		}
		return s.userRepo.UpdateBalance(txCtx, userID, balance+ev.Payout)
	})
	if err != nil {
		log.Printf("auto cash out: credit failed for user %d, payout %.2f: %v", userID, ev.Payout, err)
	}
}

// onRoundSettled persists the settlement record. Losers were debited at bet
// time, so no balance movement remains here.
func (s *serv) onRoundSettled(event model.Event) {
	ev, ok := event.(model.RoundSettledEvent)
	if !ok {
		return
	}
	go s.persistRound(ev)
}

func (s *serv) persistRound(ev model.RoundSettledEvent) {
	record := &model.RoundRecord{
		RoundID:         ev.RoundID,
		FinalMultiplier: ev.FinalMultiplier,
		Reason:          ev.Reason,
		CrashedAt:       ev.CrashedAt,
		Outcomes:        ev.Participants,
	}

	ctx := context.Background()
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.roundRepo.SaveRound(txCtx, record)
	})
	if err != nil {
		log.Printf("round settled: persist failed for round %d: %v", ev.RoundID, err)
	}
}
