package prover

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/leofalp/owlgebra/internal/utils"
)

var (
	// ErrTaskNotFound is returned by [Client.Status] when the backend does
	// not know the task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidOptions is returned when the solver options published by the
	// backend are unusable.
	ErrInvalidOptions = errors.New("invalid solver options")

	// ErrRetryExhausted is returned by [Client.Watch] when every retry of a
	// transient failure has been used up. It wraps the last error.
	ErrRetryExhausted = errors.New("all retry attempts exhausted")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	// Body is the response text. HTML error pages are converted to Markdown.
	Body string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("prover API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("prover API error: status %d: %s", e.StatusCode, utils.TruncateStringDefault(body))
}

// Temporary reports whether the request may succeed when retried
// (429 and 5xx).
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsTemporary reports whether err is an [*APIError] worth retrying.
func IsTemporary(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Temporary()
}

// apiError converts transport-level status errors into *APIError and
// leaves every other error untouched.
func apiError(err error) error {
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{StatusCode: statusErr.StatusCode, Body: statusErr.Body}
	}
	return err
}
