package env

import (
	"crash_backend/internal/config"
)

const adminTokenEnvName = "ADMIN_TOKEN"

type adminConfig struct {
	token string
}

func NewAdminConfig() (config.AdminConfig, error) {
	token, err := requireEnv(adminTokenEnvName)
	if err != nil {
		return nil, err
	}

	return &adminConfig{token: token}, nil
}

func (cfg *adminConfig) Token() string {
	return cfg.token
}
