// Package slogobs provides an observability.Provider implementation backed by
// log/slog. Spans, metric updates and log calls all become slog records
// rendered by a [Handler] in compact or JSON form. Additional handlers (for
// example a JSON log file) can be attached with [WithHandlers]; records are
// then fanned out to every handler.
//
// The main entry point is [New]; output can be tuned with [WithFormat],
// [WithLevel], [WithOutput], [WithColors], [WithHandlers] and [WithLogger].
package slogobs
