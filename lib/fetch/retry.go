package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryPolicy is the bounded retry wrapper applied at the platform
// session boundary. Only NetworkError kinds that are Retryable are
// retried; anything else fails on the first attempt.
type RetryPolicy struct {
	// total attempts, defaults to 3
	Attempts int
	// linear backoff base, attempt n waits n*Backoff, defaults to 500ms
	Backoff time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.Attempts <= 0 {
		return 3
	}
	return p.Attempts
}

func (p RetryPolicy) backoff() time.Duration {
	if p.Backoff <= 0 {
		return time.Millisecond * 500
	}
	return p.Backoff
}

func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.attempts(); attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var netErr *NetworkError
		if !errors.As(lastErr, &netErr) || !netErr.Retryable() {
			return lastErr
		}
		if attempt == p.attempts() {
			break
		}

		wait := time.Duration(attempt) * p.backoff()
		if netErr.RetryAfter > wait {
			wait = netErr.RetryAfter
		}
		slog.DebugContext(ctx, "retrying after network error",
			"attempt", attempt, "kind", netErr.Kind, "wait", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

// Retry runs an operation returning a value under the policy.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		var opErr error
		out, opErr = op(ctx)
		return opErr
	})
	return out, err
}
