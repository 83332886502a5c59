package env

import (
	"crash_backend/internal/config"
	"fmt"
	"os"
	"time"
)

const (
	accessTokenKeyEnvName       = "ACCESS_TOKEN"
	accessTokenDurationEnvName  = "ACCESS_TOKEN_DURATION"
	refreshTokenDurationEnvName = "REFRESH_TOKEN_DURATION"
)

type jwtConfig struct {
	accessTokenSecretKey string
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

func NewJWTConfig() (config.JWTConfig, error) {
	secret, err := requireEnv(accessTokenKeyEnvName)
	if err != nil {
		return nil, err
	}

	accessTTL, err := requireDurationEnv(accessTokenDurationEnvName)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := requireDurationEnv(refreshTokenDurationEnvName)
	if err != nil {
		return nil, err
	}

	return &jwtConfig{
		accessTokenSecretKey: secret,
		accessTokenDuration:  accessTTL,
		refreshTokenDuration: refreshTTL,
	}, nil
}

func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%s not set", name)
	}
	return v, nil
}

func requireDurationEnv(name string) (time.Duration, error) {
	v, err := requireEnv(name)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func (j *jwtConfig) AccessTokenSecretKey() []byte {
	return []byte(j.accessTokenSecretKey)
}

func (j *jwtConfig) AccessTokenDuration() time.Duration {
	return j.accessTokenDuration
}

func (j *jwtConfig) RefreshTokenDuration() time.Duration {
	return j.refreshTokenDuration
}
