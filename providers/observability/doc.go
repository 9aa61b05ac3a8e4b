// Package observability defines the interfaces and attribute names used for
// tracing, metrics, and structured logging across owlgebra.
//
// The entry point is [Provider], which composes [Tracer], [Metrics], and
// [Logger] into one injectable dependency. The prover client opens a span per
// API call and propagates it through a [context.Context] with
// [ContextWithSpan]; lower layers such as the HTTP helpers fetch it back with
// [SpanFromContext] and attach events to it.
//
// semconv.go lists the attribute keys, span names, and metric names.
package observability
