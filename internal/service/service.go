package service

import (
	"context"
	"crash_backend/internal/model"
)

// GameService glues the round engine to account bookkeeping: bets debit the
// balance, cash-outs and auto-cash-outs credit it, settled rounds get
// persisted.
type GameService interface {
	PlaceBet(ctx context.Context, userID int, bet model.BetRequest) (*model.BetAck, error)
	CashOut(ctx context.Context, userID int) (*model.CashOutAck, error)
	Disconnect(userID int)
	ForceCrash(reason string) error

	Snapshot() model.Snapshot
	History() []float64
	Stats() model.Stats
}

type AuthService interface {
	Register(ctx context.Context, user *model.User) (*model.AuthData, error)
	Login(ctx context.Context, login, password string) (*model.AuthData, error)
	Refresh(ctx context.Context, sessionID, refreshToken string) (newAccessToken string, err error)
	Logout(ctx context.Context, sessionID string) error
}
