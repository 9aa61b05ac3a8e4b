package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// GetLogLevelFromEnv reads OWLGEBRA_LOG_LEVEL, then LOG_LEVEL, defaulting to
// INFO.
func GetLogLevelFromEnv() slog.Level {
	level := os.Getenv("OWLGEBRA_LOG_LEVEL")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return ParseLogLevel(level)
}

// ParseLogLevel parses DEBUG, INFO, WARN, WARNING or ERROR, ignoring case and
// surrounding whitespace. Anything else yields INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
