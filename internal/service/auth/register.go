package auth

import (
	"context"
	"crash_backend/internal/model"
	"crash_backend/pkg/pass"
	"crash_backend/pkg/token"
	"time"
)

func (s *serv) Register(ctx context.Context, user *model.User) (*model.AuthData, error) {
	passwordHash, err := pass.HashPassword(user.Password)
	if err != nil {
		return nil, err
	}
	user.Password = passwordHash

	var (
		sessionID    string
		refreshToken string
		accessToken  string
	)

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		user.ID, err = s.userRepo.CreateUser(ctx, user)
		if err != nil {
			return err
		}

		sessionID = generateSessionID()

		refreshToken, err = token.GenerateRefreshToken()
		if err != nil {
			return err
		}

		err = s.authRepo.CreateSession(ctx,
			&model.Session{
				ID:               sessionID,
				UserID:           user.ID,
				RefreshTokenHash: token.HashRefreshToken(refreshToken),
				ExpiresAt:        time.Now().Add(s.jwtConfig.RefreshTokenDuration()),
			})
		if err != nil {
			return err
		}

		accessToken, err = token.GenerateAccessToken(
			user,
			s.jwtConfig.AccessTokenSecretKey(),
			s.jwtConfig.AccessTokenDuration())
		return err
	})
	if err != nil {
		return nil, err
	}

	return &model.AuthData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
	}, nil
}
