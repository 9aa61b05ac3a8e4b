package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultMaxStringLength is the default maximum length for truncated strings
	DefaultMaxStringLength = 500
)

// JSONToString serialises object to JSON, pretty-printed with two-space
// indentation when indent is true. HTML characters such as < are not
// escaped, since Lean goals are full of them. On failure it returns a
// JSON-formatted error string so the result is always safe to print.
func JSONToString(object any, indent bool) string {
	var buf strings.Builder
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(object); err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// TruncateString shortens s to at most maxLen bytes, appending a suffix that
// records the original length. A non-positive maxLen means
// [DefaultMaxStringLength].
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// TruncateStringDefault truncates a string using DefaultMaxStringLength
func TruncateStringDefault(s string) string {
	return TruncateString(s, DefaultMaxStringLength)
}
