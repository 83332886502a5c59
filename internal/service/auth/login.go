package auth

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/pkg/pass"
	"crash_backend/pkg/token"
	"errors"
	"time"
)

// ErrInvalidCredentials covers both an unknown login and a wrong password,
// so responses never reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid login or password")

func (s *serv) Login(ctx context.Context, login, password string) (*model.AuthData, error) {
	user, err := s.userRepo.GetUserByLogin(ctx, login)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !pass.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	sessionID := generateSessionID()

	refreshToken, err := token.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	err = s.authRepo.CreateSession(ctx,
		&model.Session{
			ID:               sessionID,
			UserID:           user.ID,
			RefreshTokenHash: token.HashRefreshToken(refreshToken),
			ExpiresAt:        time.Now().Add(s.jwtConfig.RefreshTokenDuration()),
		})
	if err != nil {
		return nil, err
	}

	accessToken, err := token.GenerateAccessToken(
		user,
		s.jwtConfig.AccessTokenSecretKey(),
		s.jwtConfig.AccessTokenDuration())
	if err != nil {
		return nil, err
	}

	return &model.AuthData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
	}, nil
}
