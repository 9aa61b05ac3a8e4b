package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"

	"github.com/leofalp/owlgebra/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// HeaderOption is an extra request header.
type HeaderOption struct {
	Key   string
	Value string
}

// StatusError is returned for responses outside the 2xx range. Body holds the
// response text; HTML error pages (typically from a reverse proxy) are
// converted to Markdown so they stay readable in a terminal.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("non-2xx status %d", e.StatusCode)
	}
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateStringDefault(body))
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsStatus reports whether err is a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// DoPostSync performs a synchronous HTTP POST request with a JSON body and
// decodes the JSON response into OutputStruct.
//
// Error Handling Strategy:
//   - Context errors (timeout, cancellation) are propagated immediately
//   - Non-2xx responses return a *StatusError carrying the body
//   - Response body close errors are logged but don't override primary errors
//   - JSON decoding errors include a response preview for debugging
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}
	return doJSON[OutputStruct](ctx, client, http.MethodPost, url, apiKey, jsonBody, headers)
}

// DoGetSync performs a synchronous HTTP GET request and decodes the JSON
// response into OutputStruct. It follows the same error strategy as
// [DoPostSync].
func DoGetSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	return doJSON[OutputStruct](ctx, client, http.MethodGet, url, apiKey, nil, headers)
}

// request is one outgoing call before it is sent.
type request struct {
	method  string
	url     string
	apiKey  string
	accept  string
	body    []byte
	headers []HeaderOption
}

// send builds and performs r. Progress is reported as span events named
// "<prefix>.prepared" and "<prefix>.error". The returned duration covers the
// round trip up to the response headers.
func send(ctx context.Context, client *http.Client, prefix string, r request) (*http.Response, time.Duration, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var bodyReader io.Reader
	if r.body != nil {
		bodyReader = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}

	requestID := uuid.NewString()
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", r.accept)
	req.Header.Set("X-Request-ID", requestID)
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	for _, header := range r.headers {
		req.Header.Set(header.Key, header.Value)
	}

	observability.AddEvent(ctx, prefix+".prepared",
		observability.String(observability.AttrHTTPMethod, r.method),
		observability.String(observability.AttrHTTPURL, r.url),
		observability.String(observability.AttrHTTPRequestID, requestID),
		observability.Int(observability.AttrHTTPRequestBodySize, len(r.body)),
	)

	start := time.Now()
	res, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		observability.AddEvent(ctx, prefix+".error",
			observability.Error(err),
			observability.Duration(observability.AttrHTTPDuration, elapsed),
		)
		return res, elapsed, fmt.Errorf("error sending request: %w", err)
	}
	return res, elapsed, nil
}

// statusError reads the body of a non-2xx response into a *StatusError.
func statusError(res *http.Response, body []byte) *StatusError {
	return &StatusError{
		StatusCode: res.StatusCode,
		Body:       readableBody(res.Header.Get("Content-Type"), body),
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func doJSON[OutputStruct any](ctx context.Context, client *http.Client, method, url, apiKey string, jsonBody []byte, headers []HeaderOption) (*http.Response, *OutputStruct, error) {
	res, elapsed, err := send(ctx, client, "http.request", request{
		method:  method,
		url:     url,
		apiKey:  apiKey,
		accept:  "application/json",
		body:    jsonBody,
		headers: headers,
	})
	if err != nil {
		return res, nil, err
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	observability.AddEvent(ctx, "http.response.received",
		observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
		observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
		observability.Duration(observability.AttrHTTPDuration, elapsed),
	)

	if !isSuccess(res.StatusCode) {
		return res, nil, statusError(res, respBody)
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(respBody), 500))
	}

	return res, &resStruct, nil
}

// readableBody returns body as text, converting HTML to Markdown. Conversion
// failures fall back to the raw body.
func readableBody(contentType string, body []byte) string {
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return string(body)
	}
	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return string(body)
	}
	return strings.TrimSpace(markdown)
}

// CloseWithLog closes c and logs a failure instead of returning it, for use
// in defer statements where the primary error must win.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
