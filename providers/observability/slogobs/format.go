package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes (default).
	// Example: 2025-11-03 10:40:35 DEBUG Message → {"key":"value"}
	FormatCompact Format = "compact"

	// FormatJSON is one JSON object per line, for log aggregation.
	// Example: {"time":"2025-11-03T10:40:35","level":"DEBUG","msg":"Message","key":"value"}
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. Unknown names yield FormatCompact.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// GetFormatFromEnv reads OWLGEBRA_LOG_FORMAT, then LOG_FORMAT, defaulting to
// FormatCompact.
func GetFormatFromEnv() Format {
	if format := os.Getenv("OWLGEBRA_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return FormatCompact
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}
