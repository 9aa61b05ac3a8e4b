package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/owlgebra/providers/observability"
)

type valueResponse struct {
	Value int `json:"value"`
}

// ---- DoPostSync tests -------------------------------------------------------

// TestDoPostSync_Success verifies the request headers and body, and that a
// 200 response is decoded into the output struct.
func TestDoPostSync_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected JSON content type, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		if got := r.Header.Get("X-Extra"); got != "1" {
			t.Errorf("expected custom header, got %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["q"] != "test" {
			t.Errorf("unexpected body %v (err %v)", body, err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	_, result, err := DoPostSync[valueResponse](
		context.Background(),
		server.Client(),
		server.URL,
		"test-key",
		map[string]string{"q": "test"},
		HeaderOption{Key: "X-Extra", Value: "1"},
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil || result.Value != 42 {
		t.Errorf("expected Value=42, got %+v", result)
	}
}

// TestDoPostSync_Non2xxStatus verifies that a non-2xx status yields a
// *StatusError carrying the code and body.
func TestDoPostSync_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad request")
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", map[string]string{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusBadRequest || statusErr.Body != "bad request" {
		t.Errorf("unexpected status error: %+v", statusErr)
	}
	if statusErr.Temporary() {
		t.Error("400 should not be temporary")
	}
	if !IsStatus(err, http.StatusBadRequest) {
		t.Error("IsStatus should match 400")
	}
}

// TestDoPostSync_HTMLErrorBody verifies that HTML error pages are converted
// to Markdown.
func TestDoPostSync_HTMLErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html><body><h1>502 Bad Gateway</h1><p>upstream <b>unavailable</b></p></body></html>")
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", map[string]string{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if strings.Contains(statusErr.Body, "<h1>") {
		t.Errorf("expected HTML to be converted, got %q", statusErr.Body)
	}
	if !strings.Contains(statusErr.Body, "# 502 Bad Gateway") || !strings.Contains(statusErr.Body, "**unavailable**") {
		t.Errorf("expected Markdown heading and emphasis, got %q", statusErr.Body)
	}
	if !statusErr.Temporary() {
		t.Error("502 should be temporary")
	}
}

// TestDoPostSync_UnmarshalError verifies that an undecodable 200 body returns
// an error mentioning "unmarshal".
func TestDoPostSync_UnmarshalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `"not an object"`)
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", map[string]string{})
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "unmarshal") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

// TestDoPostSync_MarshalError verifies that an unencodable body fails before
// any request is made.
func TestDoPostSync_MarshalError(t *testing.T) {
	_, _, err := DoPostSync[valueResponse](context.Background(), nil, "http://127.0.0.1:0", "", make(chan int))
	if err == nil || !strings.Contains(err.Error(), "marshaling") {
		t.Errorf("expected marshaling error, got %v", err)
	}
}

// TestDoPostSync_ContextCanceled verifies that a canceled context surfaces
// as a wrapped context error.
func TestDoPostSync_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := DoPostSync[valueResponse](ctx, server.Client(), server.URL, "", map[string]string{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// ---- DoGetSync tests --------------------------------------------------------

func TestDoGetSync_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("GET should not send a content type, got %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("expected no Authorization header without a key")
		}
		fmt.Fprint(w, `{"value":7}`)
	}))
	defer server.Close()

	res, result, err := DoGetSync[valueResponse](context.Background(), server.Client(), server.URL, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.StatusCode != http.StatusOK || result.Value != 7 {
		t.Errorf("unexpected response %d %+v", res.StatusCode, result)
	}
}

func TestDoGetSync_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, _, err := DoGetSync[valueResponse](context.Background(), server.Client(), server.URL, "")
	if !IsStatus(err, http.StatusNotFound) {
		t.Errorf("expected 404 status error, got %v", err)
	}
}

// ---- span events -------------------------------------------------------------

type eventSpan struct {
	events []string
}

func (s *eventSpan) End() {}
func (s *eventSpan) SetAttributes(...observability.Attribute) {}
func (s *eventSpan) SetStatus(observability.StatusCode, string) {}
func (s *eventSpan) RecordError(error) {}
func (s *eventSpan) AddEvent(name string, _ ...observability.Attribute) {
	s.events = append(s.events, name)
}

func TestDoGetSync_RecordsSpanEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	span := &eventSpan{}
	ctx := observability.ContextWithSpan(context.Background(), span)
	if _, _, err := DoGetSync[valueResponse](ctx, server.Client(), server.URL, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"http.request.prepared", "http.response.received"}
	if strings.Join(span.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", span.events, want)
	}
}
