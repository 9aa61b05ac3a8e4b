package observability

// Attribute keys, span names and metric names shared by all components.

// --- HTTP ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestID        = "http.request.id"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// --- Proving jobs ---

const (
	// AttrTaskID is the backend task identifier returned by a submission.
	AttrTaskID = "task.id"
	// AttrTaskStatus is the backend status string, e.g. "running".
	AttrTaskStatus = "task.status"
	// AttrTheoremName is the parsed theorem name.
	AttrTheoremName = "theorem.name"
	// AttrHypothesesCount is the number of hypotheses sent.
	AttrHypothesesCount = "theorem.hypotheses_count"
	// AttrPollAttempt counts status polls within one watch.
	AttrPollAttempt = "watch.poll_attempt"
	// AttrRetryAttempt counts retries of a failed poll.
	AttrRetryAttempt = "watch.retry_attempt"
	// AttrWatchElapsed is the time since the watch started.
	AttrWatchElapsed = "watch.elapsed"
	// AttrLogSteps is the number of distinct log steps in a status.
	AttrLogSteps = "task.log_steps"
)

// --- General ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span names ---

const (
	SpanSubmit  = "prover.submit"
	SpanTasks   = "prover.tasks"
	SpanStatus  = "prover.status"
	SpanOptions = "prover.options"
	SpanWatch   = "prover.watch"
	SpanLogs    = "prover.logs"
)

// --- Metric names ---

const (
	MetricRequests       = "prover.requests"
	MetricRequestErrors  = "prover.request_errors"
	MetricRequestSeconds = "prover.request_seconds"
	MetricPolls          = "prover.polls"
)

// --- Attribute constructors ---

// TaskID returns the task.id attribute.
func TaskID(id string) Attribute {
	return String(AttrTaskID, id)
}

// TaskStatus returns the task.status attribute.
func TaskStatus(status string) Attribute {
	return String(AttrTaskStatus, status)
}

// TheoremName returns the theorem.name attribute.
func TheoremName(name string) Attribute {
	return String(AttrTheoremName, name)
}

// Endpoint returns the http.url attribute for a backend path.
func Endpoint(path string) Attribute {
	return String(AttrHTTPURL, path)
}
