// Package config manages application configuration from a YAML file,
// environment variables, and default values.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration wraps every load or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set through
// config.yaml or environment variables prefixed with AUDIORELAY_
// (e.g., AUDIORELAY_SERVER_ADDR). Telegram credentials are also read from
// TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Probe    ProbeConfig    `mapstructure:"probe"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	Path            string        `mapstructure:"path"             validate:"required,startswith=/"`
	CORS            bool          `mapstructure:"cors"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   validate:"gt=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// TelegramConfig holds the Bot API endpoint and credentials. Token and
// ChatID are optional at load time; the relay rejects requests while
// either is missing.
type TelegramConfig struct {
	Token          string        `mapstructure:"token"`
	ChatID         string        `mapstructure:"chat_id"`
	APIURL         string        `mapstructure:"api_url"         validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// HasCredentials reports whether both the bot token and chat id are set.
func (c TelegramConfig) HasCredentials() bool {
	return c.Token != "" && c.ChatID != ""
}

// ProbeConfig controls the periodic bot token check.
type ProbeConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
