package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultServerAddr            = ":8080"
	DefaultServerPath            = "/api/send-telegram"
	DefaultServerCORS            = true
	DefaultServerMaxBodyBytes    = 50 << 20 // base64 inflates audio by a third
	DefaultServerReadTimeout     = 2 * time.Minute
	DefaultServerWriteTimeout    = 2 * time.Minute
	DefaultServerShutdownTimeout = 10 * time.Second

	DefaultTelegramAPIURL = "https://api.telegram.org"
	// Zero leaves the outbound calls bounded only by the inbound request.
	DefaultTelegramRequestTimeout = time.Duration(0)

	DefaultProbeEnabled  = false
	DefaultProbeSchedule = "*/15 * * * *"
)

var defaults = map[string]any{
	"log.level": DefaultLogLevel,
	"log.json":  DefaultLogJSON,

	"server.addr":             DefaultServerAddr,
	"server.path":             DefaultServerPath,
	"server.cors":             DefaultServerCORS,
	"server.max_body_bytes":   DefaultServerMaxBodyBytes,
	"server.read_timeout":     DefaultServerReadTimeout,
	"server.write_timeout":    DefaultServerWriteTimeout,
	"server.shutdown_timeout": DefaultServerShutdownTimeout,

	"telegram.token":           "",
	"telegram.chat_id":         "",
	"telegram.api_url":         DefaultTelegramAPIURL,
	"telegram.request_timeout": DefaultTelegramRequestTimeout,

	"probe.enabled":  DefaultProbeEnabled,
	"probe.schedule": DefaultProbeSchedule,
}
