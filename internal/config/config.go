package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "AUDIORELAY"

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at path (optional; a missing file is not an error)
// 3. AUDIORELAY_* environment variables, plus TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credential names used by the hosting platform take precedence.
	if err := v.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN", EnvPrefix+"_TELEGRAM_TOKEN"); err != nil {
		return nil, fmt.Errorf("%w: failed to bind env: %v", ErrConfiguration, err)
	}
	if err := v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID", EnvPrefix+"_TELEGRAM_CHAT_ID"); err != nil {
		return nil, fmt.Errorf("%w: failed to bind env: %v", ErrConfiguration, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
			}
			slog.Debug("configuration file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}
