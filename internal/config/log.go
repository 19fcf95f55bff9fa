package config

import (
	"log/slog"
	"strings"
)

// LogConfig controls the process logger.  Fluent forwarding is optional and
// runs alongside the console handler.
type LogConfig struct {
	Level         slog.Level
	JSON          bool
	NoColor       bool
	FluentEnabled bool
	FluentHost    string
	FluentPort    int
	FluentTag     string
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:         parseLevel(envStr("LOG_LEVEL", "info")),
		JSON:          envBool("LOG_JSON", false),
		NoColor:       envBool("LOG_NO_COLOR", false),
		FluentEnabled: envBool("FLUENT_ENABLED", false),
		FluentHost:    envStr("FLUENT_HOST", "127.0.0.1"),
		FluentPort:    envInt("FLUENT_PORT", 24224),
		FluentTag:     envStr("FLUENT_TAG", "kiddeo.core"),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
