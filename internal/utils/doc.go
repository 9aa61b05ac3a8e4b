// Package utils provides shared low-level helpers used throughout owlgebra.
// It covers JSON-over-HTTP round trips with the proving backend, a scanner
// for newline-delimited JSON logs, and small string, pointer and timer
// utilities.
//
// Key entry points: [DoPostSync] and [DoGetSync] for synchronous JSON
// requests, [StatusError] for non-2xx responses, [LineScanner] for NDJSON,
// [Ptr] for converting values to pointers, and [Timer] for measuring latency.
package utils
