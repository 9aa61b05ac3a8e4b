package prover

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/leofalp/owlgebra/internal/utils"
	"github.com/leofalp/owlgebra/providers/observability"
)

// WatchOptions tunes [Client.Watch]. Zero values are replaced with the
// defaults documented on each field.
type WatchOptions struct {
	// Interval is the minimum time between two status polls.
	// Default: 1s.
	Interval time.Duration

	// MaxRetries is the number of consecutive transient failures (429, 5xx)
	// tolerated before Watch gives up. Default: 3.
	MaxRetries int

	// InitialBackoff is the wait before the first retry; later retries
	// double it up to MaxBackoff. Default: 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the retry wait. Default: 10s.
	MaxBackoff time.Duration
}

func (o *WatchOptions) applyDefaults() {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 10 * time.Second
	}
}

// backoff returns min(InitialBackoff * 2^attempt, MaxBackoff) plus up to 10%
// jitter. attempt is 0-indexed.
func (o WatchOptions) backoff(attempt int) time.Duration {
	base := float64(o.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(o.MaxBackoff) {
		base = float64(o.MaxBackoff)
	}
	jitter := base * 0.1 * rand.Float64() //nolint:gosec // non-cryptographic jitter
	return time.Duration(base + jitter)
}

// Watch polls a task until it reaches a terminal state (finished, failed or
// not_found) and returns its last details. fn, if not nil, is called with
// every successful poll, including the last one.
//
// Polls are spaced by a rate limiter. Transient API errors are retried with
// exponential backoff; after MaxRetries consecutive failures Watch returns
// an error wrapping [ErrRetryExhausted] and the last failure. Other errors
// and context cancellation end the watch immediately.
func (c *Client) Watch(ctx context.Context, id string, opts WatchOptions, fn func(TaskDetails)) (TaskDetails, error) {
	opts.applyDefaults()

	ctx, span := c.observer.StartSpan(ctx, observability.SpanWatch,
		observability.TaskID(id),
	)
	defer span.End()
	timer := utils.NewTimer()

	limiter := rate.NewLimiter(rate.Every(opts.Interval), 1)
	polls := c.observer.Counter(observability.MetricPolls)

	var last TaskDetails
	retries := 0
	for poll := 1; ; poll++ {
		if err := limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return last, fmt.Errorf("watching task %s: %w", id, contextError(ctx, err))
		}

		details, err := c.Status(ctx, id)
		if errors.Is(err, ErrTaskNotFound) {
			details, err = notFoundDetails(id), nil
		}
		if err != nil {
			if !IsTemporary(err) {
				span.RecordError(err)
				return last, fmt.Errorf("watching task %s: %w", id, err)
			}
			if retries >= opts.MaxRetries {
				span.RecordError(err)
				return last, fmt.Errorf("watching task %s: %w after %d retries: %w", id, ErrRetryExhausted, retries, err)
			}

			wait := opts.backoff(retries)
			retries++
			c.observer.Warn(ctx, "Status poll failed, retrying",
				observability.TaskID(id),
				observability.Int(observability.AttrRetryAttempt, retries),
				observability.Duration(observability.AttrDuration, wait),
				observability.Error(err),
			)
			select {
			case <-ctx.Done():
				span.RecordError(ctx.Err())
				return last, fmt.Errorf("watching task %s: %w", id, ctx.Err())
			case <-time.After(wait):
			}
			continue
		}

		retries = 0
		last = details
		polls.Add(ctx, 1, observability.TaskID(id))
		span.AddEvent("watch.poll",
			observability.Int(observability.AttrPollAttempt, poll),
			observability.TaskStatus(details.Status),
			observability.Duration(observability.AttrWatchElapsed, timer.Elapsed()),
		)
		if fn != nil {
			fn(details)
		}

		if IsTerminal(details.Status) {
			span.SetAttributes(
				observability.TaskStatus(details.Status),
				observability.Int(observability.AttrPollAttempt, poll),
			)
			span.SetStatus(observability.StatusOK, "")
			c.observer.Info(ctx, "Task reached terminal state",
				observability.TaskID(id),
				observability.TaskStatus(details.Status),
				observability.Duration(observability.AttrDuration, timer.Stop()),
			)
			return details, nil
		}
	}
}

// contextError prefers the context's own error over the limiter's wrapping
// of it, so callers can match context.Canceled and DeadlineExceeded.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
