package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/leofalp/owlgebra/providers/observability"
)

// DoGetStream performs an HTTP GET request and returns the response with the
// body left open for SSE reading. The caller must close the body. Non-2xx
// responses are read, closed and returned as a *StatusError.
func DoGetStream(ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, error) {
	res, elapsed, err := send(ctx, client, "http.stream_request", request{
		method:  http.MethodGet,
		url:     url,
		apiKey:  apiKey,
		accept:  "text/event-stream",
		headers: headers,
	})
	if err != nil {
		return res, err
	}

	if !isSuccess(res.StatusCode) {
		defer CloseWithLog(res.Body)
		errorBody, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
		if readErr != nil {
			return res, fmt.Errorf("non-2xx status %d (failed to read body: %w)", res.StatusCode, readErr)
		}
		return res, statusError(res, errorBody)
	}

	observability.AddEvent(ctx, "http.stream_response.started",
		observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
		observability.Duration(observability.AttrHTTPDuration, elapsed),
	)
	return res, nil
}

// SSEScanner reads Server-Sent Events from an io.Reader. Every "data:" line
// is returned as soon as it is read, so a producer that flushes one JSON
// record per line is consumed live even without blank-line event
// separators. Comments and other fields are skipped, and a [DONE] sentinel
// ends the stream.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates an SSEScanner. Lines longer than maxLineSize make
// Next return an error wrapping bufio.ErrTooLong.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the payload of the next "data:" line. It returns io.EOF at
// the end of the stream or on a [DONE] sentinel.
func (sseScanner *SSEScanner) Next() (string, error) {
	for sseScanner.scanner.Scan() {
		data, ok := strings.CutPrefix(sseScanner.scanner.Text(), "data:")
		if !ok {
			// blank lines, comments, event:, id: and retry: fields
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return "", io.EOF
		}
		return data, nil
	}

	if err := sseScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}
	return "", io.EOF
}
