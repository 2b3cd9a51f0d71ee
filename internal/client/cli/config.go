package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const DefaultServer = "http://localhost:3000"

type Config struct {
	Server    string `env:"DASHCTL_SERVER" envDefault:"http://localhost:3000"`
	StatePath string `env:"DASHCTL_STATE"`
}

// LoadConfig reads DASHCTL_* variables. The state file defaults to
// dashctl/state.db under the user config directory.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse client config: %w", err)
	}
	if cfg.StatePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.StatePath = filepath.Join(dir, "dashctl", "state.db")
	}
	return cfg, nil
}
