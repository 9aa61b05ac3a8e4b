// Package parse decodes loosely formatted text into Go values. Hypothesis
// lists typed by hand and log lines relayed by the proving backend are often
// almost-JSON: single quotes, trailing commas, unquoted keys, or a missing
// closing bracket. This package tries strict decoding first and falls back to
// automatic JSON repair before giving up with an error that shows both the
// original and the repaired text.
//
// The entry point is the generic [ParseStringAs], which handles primitive
// targets (string, bool, int, uint, float) by direct conversion and complex
// targets (structs, maps, slices) by JSON decoding.
package parse
