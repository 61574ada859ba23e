package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// parseEnv overlays PROVAS_* variables. Fields whose variable is unset keep
// their current value.
func parseEnv(config *Config) error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("config env: %w", err)
	}
	return nil
}

// EnvUsage describes every supported environment variable.
func EnvUsage() string {
	u, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return u
}
