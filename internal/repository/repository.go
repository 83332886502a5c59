package repository

import (
	"context"
	"crash_backend/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (id int, err error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)

	GetBalance(ctx context.Context, id int) (float64, error)
	UpdateBalance(ctx context.Context, id int, amount float64) error
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetRefreshTokenBySessionID(ctx context.Context, sessionID string) (refreshToken string, err error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetUserBySessionID(ctx context.Context, sessionID string) (*model.User, error)
}

// RoundRepository persists settled rounds for audit and display. It is a
// downstream consumer of settlement events, never a source of engine state.
type RoundRepository interface {
	SaveRound(ctx context.Context, record *model.RoundRecord) error
	LastFinalMultipliers(ctx context.Context, limit int) ([]float64, error)
}
