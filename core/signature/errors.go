package signature

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDeclaration is returned when no line of the input, once trimmed,
	// starts with the theorem keyword.
	ErrNoDeclaration = errors.New("no theorem declaration found")

	// ErrMissingGoalSeparator is returned when a declaration is found but no
	// ":" at bracket depth zero follows the theorem name, so hypotheses and
	// goal cannot be told apart.
	ErrMissingGoalSeparator = errors.New("invalid theorem format: missing goal")

	// ErrMissingProofMarker is returned under [PolicyStrict] when the goal is
	// not terminated by a top-level ":=".
	ErrMissingProofMarker = errors.New("invalid theorem format: missing proof start (:=)")
)

// ParseError reports where in the input a parse failed. Line is the 1-based
// line of the theorem keyword, or 0 when no declaration was found. Err is one
// of the package sentinels, so callers can match with [errors.Is].
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
