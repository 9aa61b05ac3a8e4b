package parse

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseStringAs parses content into a value of type T.
// Primitive targets are converted with strconv after trimming surrounding
// whitespace. Everything else is JSON-decoded; when that fails, the content
// is run through jsonrepair and decoded again.
//
// Example usage:
//
//	// Well-formed input
//	hyps, err := ParseStringAs[[]string](`["(n : ℕ)", "(h : 0 < n)"]`)
//
//	// Hand-typed input with single quotes and a trailing comma is repaired
//	hyps, err := ParseStringAs[[]string](`['(n : ℕ)', '(h : 0 < n)',]`)
//
//	// Primitives
//	n, err := ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()
	trimmed := strings.TrimSpace(content)

	switch target.Kind() {
	case reflect.String:
		// Strings are taken verbatim; only a JSON string literal is unquoted.
		if unquoted, err := strconv.Unquote(trimmed); err == nil && strings.HasPrefix(trimmed, `"`) {
			target.SetString(unquoted)
			return result, nil
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool:
		val, err := strconv.ParseBool(trimmed)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as bool: %w", err)
		}
		target.SetBool(val)
		return result, nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as float: %w", err)
		}
		target.SetFloat(val)
		return result, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as int: %w", err)
		}
		target.SetInt(val)
		return result, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return result, fmt.Errorf("failed to parse content as uint: %w", err)
		}
		target.SetUint(val)
		return result, nil

	default:
		if trimmed == "" {
			return result, fmt.Errorf("failed to parse content as %T: empty input", result)
		}
		err := json.Unmarshal([]byte(trimmed), &result)
		if err == nil {
			return result, nil
		}

		repaired, repairErr := jsonrepair.JSONRepair(trimmed)
		if repairErr != nil {
			return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
		}

		// Decode into a fresh value so a partial first attempt leaves no residue.
		var retry T
		if err = json.Unmarshal([]byte(repaired), &retry); err != nil {
			return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (original content: %s, repaired: %s)", result, err, truncate(content), truncate(repaired))
		}
		return retry, nil
	}
}

// maxQuotedContent caps how much input is echoed back in error messages.
const maxQuotedContent = 200

func truncate(s string) string {
	if len(s) <= maxQuotedContent {
		return s
	}
	return s[:maxQuotedContent] + "..."
}
