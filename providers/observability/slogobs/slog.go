package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"

	"github.com/leofalp/owlgebra/providers/observability"
)

// Observer implements observability.Provider on top of a slog.Logger.
type Observer struct {
	logger  *slog.Logger
	metrics *metricsStore
}

// Ensure Observer implements observability.Provider
var _ observability.Provider = (*Observer)(nil)

// New creates an Observer. Without options the format and level come from
// OWLGEBRA_LOG_FORMAT and OWLGEBRA_LOG_LEVEL and records go to stderr.
//
// Example usage:
//
//	// Console plus a JSON log file
//	file, _ := os.Create("owl.log")
//	observer := slogobs.New(
//	    slogobs.WithLevel(slog.LevelDebug),
//	    slogobs.WithHandlers(slog.NewJSONHandler(file, nil)),
//	)
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	logger := cfg.logger
	if logger == nil {
		var handler slog.Handler = NewHandler(&HandlerOptions{
			Format: cfg.format,
			Level:  cfg.level,
			Output: cfg.output,
			Colors: cfg.colors,
		})
		if len(cfg.handlers) > 0 {
			handler = slogmulti.Fanout(append([]slog.Handler{handler}, cfg.handlers...)...)
		}
		logger = slog.New(handler)
	}

	return &Observer{
		logger:  logger,
		metrics: newMetricsStore(),
	}
}

// Logger returns the underlying logger, e.g. to install with slog.SetDefault.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// --- TRACING ---

// StartSpan logs the span start at debug level and returns a context
// carrying the span, so nested calls can attach events to it.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{
		name:      name,
		startTime: time.Now(),
		logger:    o.logger,
		attrs:     attrs,
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "Span started", span.logAttrs("span.start")...)
	return observability.ContextWithSpan(ctx, span), span
}

type slogSpan struct {
	name      string
	startTime time.Time
	logger    *slog.Logger
	mu        sync.Mutex
	attrs     []observability.Attribute
	failed    bool
}

// appendAttrs converts attrs and appends them to out.
func appendAttrs(out []slog.Attr, attrs ...observability.Attribute) []slog.Attr {
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	return out
}

func (s *slogSpan) logAttrs(event string, extra ...observability.Attribute) []slog.Attr {
	out := []slog.Attr{
		slog.String("span", s.name),
		slog.String("event", event),
	}
	out = appendAttrs(out, s.attrs...)
	return appendAttrs(out, extra...)
}

// End logs the span duration and accumulated attributes. Spans that recorded
// an error end at warn level, the rest at debug level.
func (s *slogSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	level := slog.LevelDebug
	if s.failed {
		level = slog.LevelWarn
	}
	attrs := s.logAttrs("span.end", observability.Duration(observability.AttrDuration, time.Since(s.startTime)))
	s.logger.LogAttrs(context.Background(), level, "Span ended", attrs...)
}

// SetAttributes appends attrs to the span.
func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

// SetStatus records the final status of the span.
func (s *slogSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := "unset"
	switch code {
	case observability.StatusOK:
		status = "ok"
	case observability.StatusError:
		status = "error"
		s.failed = true
	}
	s.attrs = append(s.attrs, observability.String(observability.AttrStatus, status))
	if description != "" {
		s.attrs = append(s.attrs, observability.String(observability.AttrStatusDescription, description))
	}
}

// RecordError attaches err to the span and marks it failed.
func (s *slogSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = true
	s.attrs = append(s.attrs, observability.Error(err))
}

// AddEvent logs a named event at debug level.
func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := appendAttrs([]slog.Attr{
		slog.String("span", s.name),
		slog.String("event", name),
	}, attrs...)
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "Span event", out...)
}

// --- METRICS ---

// Counter returns the named counter; repeated calls share one instance.
func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.counter(name, o.logger)
}

// Histogram returns the named histogram; repeated calls share one instance.
func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.histogram(name, o.logger)
}

// CounterValue returns the current value of a counter, zero if unknown.
func (o *Observer) CounterValue(name string) int64 {
	o.metrics.mu.Lock()
	c, ok := o.metrics.counters[name]
	o.metrics.mu.Unlock()
	if !ok {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// HistogramValue returns the aggregate of a histogram, zero if unknown.
func (o *Observer) HistogramValue(name string) HistogramStats {
	o.metrics.mu.Lock()
	h, ok := o.metrics.histograms[name]
	o.metrics.mu.Unlock()
	if !ok {
		return HistogramStats{}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

type metricsStore struct {
	mu         sync.Mutex
	counters   map[string]*slogCounter
	histograms map[string]*slogHistogram
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		counters:   make(map[string]*slogCounter),
		histograms: make(map[string]*slogHistogram),
	}
}

func (m *metricsStore) counter(name string, logger *slog.Logger) *slogCounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[name]
	if !ok {
		c = &slogCounter{name: name, logger: logger}
		m.counters[name] = c
	}
	return c
}

func (m *metricsStore) histogram(name string, logger *slog.Logger) *slogHistogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histograms[name]
	if !ok {
		h = &slogHistogram{name: name, logger: logger}
		m.histograms[name] = h
	}
	return h
}

type slogCounter struct {
	name   string
	logger *slog.Logger
	mu     sync.Mutex
	value  int64
}

// Add increments the counter and logs the new total at debug level.
func (c *slogCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	c.mu.Lock()
	c.value += value
	current := c.value
	c.mu.Unlock()

	out := appendAttrs([]slog.Attr{
		slog.String("metric", c.name),
		slog.String("type", "counter"),
		slog.Int64("value", current),
		slog.Int64("delta", value),
	}, attrs...)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "Counter", out...)
}

type slogHistogram struct {
	name   string
	logger *slog.Logger
	mu     sync.Mutex
	stats  HistogramStats
}

// HistogramStats aggregates the observations of one histogram.
type HistogramStats struct {
	Count int64
	Sum   float64
	Max   float64
}

// Mean returns the average observation, zero when there is none.
func (s HistogramStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Record aggregates an observation and logs it at debug level.
func (h *slogHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	h.mu.Lock()
	h.stats.Count++
	h.stats.Sum += value
	h.stats.Max = max(h.stats.Max, value)
	h.mu.Unlock()

	out := appendAttrs([]slog.Attr{
		slog.String("metric", h.name),
		slog.String("type", "histogram"),
		slog.Float64("value", value),
	}, attrs...)
	h.logger.LogAttrs(ctx, slog.LevelDebug, "Histogram", out...)
}

// --- LOGGING ---

// Debug logs at DEBUG level.
func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs...)
}

// Info logs at INFO level.
func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs at WARN level.
func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs...)
}

// Error logs at ERROR level.
func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs...)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, level, msg, appendAttrs(make([]slog.Attr, 0, len(attrs)), attrs...)...)
}
