package observability

import "context"

type spanKey struct{}

// SpanFromContext returns the Span stored in ctx, or nil.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(Span)
	return span
}

// ContextWithSpan returns a copy of ctx carrying span.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanKey{}, span)
}

// AddEvent records an event on the span carried by ctx. Without a span it
// does nothing, so transport code can report progress unconditionally.
func AddEvent(ctx context.Context, name string, attrs ...Attribute) {
	if span := SpanFromContext(ctx); span != nil {
		span.AddEvent(name, attrs...)
	}
}
