package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Handler is a slog.Handler writing compact or JSON lines.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	// Level is the minimum level; nil means INFO.
	Level slog.Leveler
	// Output defaults to os.Stderr.
	Output io.Writer
	// Colors forces ANSI colors; otherwise they follow isatty detection.
	Colors bool
}

// NewHandler creates a Handler with the given options.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	format := opts.Format
	if format == "" {
		format = FormatCompact
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	colors := opts.Colors
	if !colors {
		if f, ok := output.(*os.File); ok {
			colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	if format == FormatJSON {
		colors = false
	}

	return &Handler{
		format: format,
		level:  level,
		output: output,
		colors: colors,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var line []byte
	var err error
	if h.format == FormatJSON {
		line, err = h.formatJSON(r)
	} else {
		line, err = h.formatCompact(r)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.output.Write(line)
	return err
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		attr.Key = h.qualify(attr.Key)
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

// WithGroup returns a Handler that prefixes later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// formatCompact renders "2006-01-02 15:04:05 LEVEL Message → {"key":"value"}".
func (h *Handler) formatCompact(r slog.Record) ([]byte, error) {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')

	level := fmt.Sprintf("%5s", levelString(r.Level))
	if h.colors {
		buf = append(buf, colorForLevel(r.Level)...)
		buf = append(buf, level...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, level...)
	}
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	if attrs := h.collectAttrs(r); len(attrs) > 0 {
		encoded, err := json.Marshal(attrs)
		if err != nil {
			return nil, fmt.Errorf("encoding log attributes: %w", err)
		}
		buf = append(buf, " → "...)
		buf = append(buf, encoded...)
	}
	return append(buf, '\n'), nil
}

// formatJSON renders one JSON object; attributes are merged at the top level.
func (h *Handler) formatJSON(r slog.Record) ([]byte, error) {
	data := h.collectAttrs(r)
	data["time"] = r.Time.Format("2006-01-02T15:04:05")
	data["level"] = levelString(r.Level)
	data["msg"] = r.Message

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

func (h *Handler) collectAttrs(r slog.Record) map[string]any {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		attrs[attr.Key] = attrValue(attr.Value)
	}
	r.Attrs(func(attr slog.Attr) bool {
		attrs[h.qualify(attr.Key)] = attrValue(attr.Value)
		return true
	})
	return attrs
}

func (h *Handler) qualify(key string) string {
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	return key
}

// attrValue unwraps values for JSON encoding. Errors and durations are
// rendered as text.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.Any()
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}
