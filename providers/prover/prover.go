package prover

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leofalp/owlgebra/internal/utils"
	"github.com/leofalp/owlgebra/providers/observability"
)

const (
	defaultBaseURL = "http://localhost:8000"

	proveEndpoint   = "/prove/"
	tasksEndpoint   = "/pending-tasks/"
	statusEndpoint  = "/status/"
	logsEndpoint    = "/logs/"
	optionsEndpoint = "/options/"

	// maxConcurrentStatus bounds the parallel requests of StatusMany.
	maxConcurrentStatus = 4
)

// Client talks to the proving backend. It is safe for concurrent use once
// configured.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	observer   observability.Provider
}

// NewClient creates a Client configured from OWLGEBRA_API_URL (default
// http://localhost:8000) and OWLGEBRA_API_KEY.
func NewClient() *Client {
	baseURL := os.Getenv("OWLGEBRA_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     os.Getenv("OWLGEBRA_API_KEY"),
		httpClient: &http.Client{},
		observer:   observability.Nop(),
	}
}

// WithBaseURL sets the backend base URL.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithAPIKey sets the bearer token sent with every request.
func (c *Client) WithAPIKey(apiKey string) *Client {
	c.apiKey = apiKey
	return c
}

// WithHTTPClient sets a custom HTTP client
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// WithObserver sets the observability provider. Nil disables observability.
func (c *Client) WithObserver(observer observability.Provider) *Client {
	if observer == nil {
		observer = observability.Nop()
	}
	c.observer = observer
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit starts a proof job.
func (c *Client) Submit(ctx context.Context, request ProveRequest) (SubmitResponse, error) {
	if err := request.Validate(); err != nil {
		return SubmitResponse{}, err
	}

	ctx, span := c.observer.StartSpan(ctx, observability.SpanSubmit,
		observability.TheoremName(request.Name),
		observability.Int(observability.AttrHypothesesCount, len(request.Hypotheses)),
	)
	defer span.End()
	timer := utils.NewTimer()

	_, resp, err := utils.DoPostSync[SubmitResponse](ctx, c.httpClient, c.baseURL+proveEndpoint, c.apiKey, request)
	c.record(ctx, span, timer, proveEndpoint, err)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("submitting theorem %q: %w", request.Name, apiError(err))
	}
	if resp.TaskID == "" {
		return SubmitResponse{}, fmt.Errorf("submitting theorem %q: response carries no task_id", request.Name)
	}

	span.SetAttributes(observability.TaskID(resp.TaskID))
	c.observer.Info(ctx, "Theorem submitted",
		observability.TheoremName(request.Name),
		observability.TaskID(resp.TaskID),
	)
	return *resp, nil
}

// Tasks returns the task board.
func (c *Client) Tasks(ctx context.Context) (TaskBoard, error) {
	ctx, span := c.observer.StartSpan(ctx, observability.SpanTasks)
	defer span.End()
	timer := utils.NewTimer()

	_, resp, err := utils.DoGetSync[taskBoardResponse](ctx, c.httpClient, c.baseURL+tasksEndpoint, c.apiKey)
	c.record(ctx, span, timer, tasksEndpoint, err)
	if err != nil {
		return TaskBoard{}, fmt.Errorf("listing tasks: %w", apiError(err))
	}
	return resp.board(), nil
}

// Status returns one task with its logs grouped by step. Unknown ids yield
// an error wrapping [ErrTaskNotFound].
func (c *Client) Status(ctx context.Context, id string) (TaskDetails, error) {
	if strings.TrimSpace(id) == "" {
		return TaskDetails{}, errors.New("task id is empty")
	}

	ctx, span := c.observer.StartSpan(ctx, observability.SpanStatus,
		observability.TaskID(id),
	)
	defer span.End()
	timer := utils.NewTimer()

	_, resp, err := utils.DoGetSync[statusResponse](ctx, c.httpClient, c.baseURL+statusEndpoint+url.PathEscape(id), c.apiKey)
	if utils.IsStatus(err, http.StatusNotFound) {
		// A missing task is an answer, not a failed request.
		c.record(ctx, span, timer, statusEndpoint, nil)
		return TaskDetails{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	c.record(ctx, span, timer, statusEndpoint, err)
	if err != nil {
		return TaskDetails{}, fmt.Errorf("fetching status of task %s: %w", id, apiError(err))
	}

	details := TaskDetails{
		TaskID: resp.TaskID,
		Status: resp.Status,
		Result: resp.Result,
		Logs:   GroupLogs(resp.Logs),
	}
	if details.TaskID == "" {
		details.TaskID = id
	}

	span.SetAttributes(
		observability.TaskStatus(details.Status),
		observability.Int(observability.AttrLogSteps, len(details.Logs)),
	)
	return details, nil
}

// StatusMany fetches several tasks concurrently. Results keep the order of
// ids; unknown ids are reported with status "not_found" rather than as an
// error. The first other failure cancels the remaining requests.
func (c *Client) StatusMany(ctx context.Context, ids []string) ([]TaskDetails, error) {
	results := make([]TaskDetails, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentStatus)
	for i, id := range ids {
		group.Go(func() error {
			details, err := c.Status(groupCtx, id)
			if errors.Is(err, ErrTaskNotFound) {
				results[i] = notFoundDetails(id)
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = details
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func notFoundDetails(id string) TaskDetails {
	return TaskDetails{
		TaskID: id,
		Status: StateNotFound,
		Result: []byte(`{"error":"Task not found"}`),
		Logs:   []LogGroup{},
	}
}

// StreamLogs follows the live log stream of a task and calls fn for every
// entry until the backend closes the stream, ctx is cancelled, or fn
// returns an error.
func (c *Client) StreamLogs(ctx context.Context, id string, fn func(LogEntry) error) error {
	ctx, span := c.observer.StartSpan(ctx, observability.SpanLogs,
		observability.TaskID(id),
	)
	defer span.End()
	timer := utils.NewTimer()

	response, err := utils.DoGetStream(ctx, c.httpClient, c.baseURL+logsEndpoint+url.PathEscape(id), c.apiKey)
	if err != nil {
		c.record(ctx, span, timer, logsEndpoint, err)
		if utils.IsStatus(err, http.StatusNotFound) {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return fmt.Errorf("streaming logs of task %s: %w", id, apiError(err))
	}
	defer utils.CloseWithLog(response.Body)

	err = readEvents(response.Body, fn)
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		err = ctxErr
	}
	c.record(ctx, span, timer, logsEndpoint, err)
	if err != nil {
		return fmt.Errorf("streaming logs of task %s: %w", id, err)
	}
	return nil
}

// Options returns the solver models and iteration limits the backend
// accepts. The answer is validated before it is returned.
func (c *Client) Options(ctx context.Context) (SolverOptions, error) {
	ctx, span := c.observer.StartSpan(ctx, observability.SpanOptions)
	defer span.End()
	timer := utils.NewTimer()

	_, resp, err := utils.DoGetSync[SolverOptions](ctx, c.httpClient, c.baseURL+optionsEndpoint, c.apiKey)
	c.record(ctx, span, timer, optionsEndpoint, err)
	if err != nil {
		return SolverOptions{}, fmt.Errorf("fetching solver options: %w", apiError(err))
	}
	if err := resp.Validate(); err != nil {
		span.RecordError(err)
		return SolverOptions{}, err
	}
	return *resp, nil
}

// record closes the bookkeeping of one request: span status, request
// counters and latency.
func (c *Client) record(ctx context.Context, span observability.Span, timer *utils.Timer, endpoint string, err error) {
	elapsed := timer.Stop()
	attr := observability.Endpoint(endpoint)

	c.observer.Counter(observability.MetricRequests).Add(ctx, 1, attr)
	c.observer.Histogram(observability.MetricRequestSeconds).Record(ctx, elapsed.Seconds(), attr)

	if err != nil {
		c.observer.Counter(observability.MetricRequestErrors).Add(ctx, 1, attr)
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		c.observer.Debug(ctx, "Request failed", attr, observability.Error(err),
			observability.Duration(observability.AttrDuration, elapsed))
		return
	}
	span.SetStatus(observability.StatusOK, "")
}
