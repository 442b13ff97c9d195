package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port              int    `env:"QUICKFETCH_PORT" envDefault:"6999"`
	DataDir           string `env:"QUICKFETCH_DATA_DIR"`
	TLS               bool   `env:"QUICKFETCH_TLS" envDefault:"true"`
	LogLevel          string `env:"QUICKFETCH_LOG_LEVEL" envDefault:"info"`
	SessionTTLSeconds int    `env:"QUICKFETCH_SESSION_TTL_SECONDS" envDefault:"0"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SessionTTL returns the pairing session expiry, or zero when sessions
// never expire (the default).
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "quickfetch.db")
}

func (c *Config) CertDir() string {
	return filepath.Join(c.DataDir, "certs")
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".quickfetch")
	}

	return &cfg, nil
}
