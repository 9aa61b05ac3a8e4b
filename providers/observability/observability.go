package observability

import (
	"context"
	"time"
)

// Provider is the main interface for observability (tracing, metrics, logging)
type Provider interface {
	Tracer
	Metrics
	Logger
}

// --- TRACING ---

// Tracer starts spans.
type Tracer interface {
	// StartSpan starts a new span and returns a context carrying it.
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span represents a single unit of work
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

// StatusCode represents the status of a span
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// --- METRICS ---

// Metrics hands out named instruments.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// Counter is a monotonically increasing metric
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram records distribution of values
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// --- LOGGING ---

// Logger provides levelled structured logging.
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// --- ATTRIBUTES ---

// Attribute is a key-value pair attached to spans, events, metrics and logs.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error creates an error attribute; a nil error yields an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}

// --- NO-OP ---

// Nop returns a Provider that discards everything. Components use it when no
// observer is configured so they never need nil checks.
func Nop() Provider {
	return nopProvider{}
}

type nopProvider struct{}

type nopSpan struct{}

type nopInstrument struct{}

func (nopProvider) StartSpan(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, nopSpan{}
}
func (nopProvider) Counter(string) Counter { return nopInstrument{} }
func (nopProvider) Histogram(string) Histogram { return nopInstrument{} }
func (nopProvider) Debug(context.Context, string, ...Attribute) {}
func (nopProvider) Info(context.Context, string, ...Attribute) {}
func (nopProvider) Warn(context.Context, string, ...Attribute) {}
func (nopProvider) Error(context.Context, string, ...Attribute) {}

func (nopSpan) End() {}
func (nopSpan) SetAttributes(...Attribute) {}
func (nopSpan) SetStatus(StatusCode, string) {}
func (nopSpan) RecordError(error) {}
func (nopSpan) AddEvent(string, ...Attribute) {}
func (nopInstrument) Add(context.Context, int64, ...Attribute) {}
func (nopInstrument) Record(context.Context, float64, ...Attribute) {}
