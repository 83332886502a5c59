package auth

import (
	"context"
	"crash_backend/pkg/token"
	"errors"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Refresh checks the presented refresh token against the session's stored
// hash and mints a new access token.
func (s *serv) Refresh(ctx context.Context, sessionID, refreshToken string) (string, error) {
	refreshTokenHash, err := s.authRepo.GetRefreshTokenBySessionID(ctx, sessionID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	if !token.VerifyRefreshToken(refreshToken, refreshTokenHash) {
		return "", ErrInvalidRefreshToken
	}

	user, err := s.authRepo.GetUserBySessionID(ctx, sessionID)
	if err != nil {
		return "", err
	}

	newAccessToken, err := token.GenerateAccessToken(
		user,
		s.jwtConfig.AccessTokenSecretKey(),
		s.jwtConfig.AccessTokenDuration())
	if err != nil {
		return "", err
	}

	return newAccessToken, nil
}
