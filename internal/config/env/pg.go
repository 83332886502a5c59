package env

import (
	"crash_backend/internal/config"
)

const pgDSNEnvName = "PG_DSN"

type pgConfig struct {
	dsn string
}

func NewPGConfig() (config.PGConfig, error) {
	dsn, err := requireEnv(pgDSNEnvName)
	if err != nil {
		return nil, err
	}

	return &pgConfig{dsn: dsn}, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.dsn
}
