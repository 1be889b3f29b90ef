package ai

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/url"
	"time"
)

// retryableStatuses are the HTTP statuses worth another attempt.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// RetryPolicy bounds the retry loop around one upstream call.
type RetryPolicy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy matches the production defaults: 4 total attempts
// with 1s, 2s, 4s waits between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Delay returns the backoff before the attempt following failed attempt
// n (0-based): BaseDelay * BackoffFactor^n, capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt)))
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// retryable classifies a single-attempt failure. Timeouts, network
// errors and a fixed set of HTTP statuses are retryable; anything else
// fails immediately without consuming further attempts.
func retryable(err error) bool {
	if err == nil {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return retryableStatuses[se.status]
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	// Any remaining transport-level failure is a connection/network error.
	var ue *url.Error
	return errors.As(err, &ue)
}

// classify maps the last failure of an exhausted call to its terminal
// error. Upstream 429s are folded into RateLimitError so callers see
// them exactly like a local admission rejection.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Class: FailureTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &UpstreamError{Class: FailureTimeout, Err: err}
	}

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.status == 429:
			return &RateLimitError{
				Message:    "API rate limit exceeded after multiple attempts. Please try again in a moment.",
				RetryAfter: time.Minute,
			}
		case se.status >= 500:
			return &UpstreamError{Class: FailureUnavailable, Status: se.status, Err: err}
		default:
			return &UpstreamError{Class: FailureRequest, Status: se.status, Err: err}
		}
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return &UpstreamError{Class: FailureNetwork, Err: err}
	}

	return &UpstreamError{Class: FailureRequest, Err: err}
}

// transport runs one logical upstream call with bounded
// exponential-backoff retry. The sleep function is injectable for tests
// and must not hold any lock while waiting.
type transport struct {
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

func newTransport(policy RetryPolicy, logger *slog.Logger) *transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &transport{
		policy: policy,
		sleep:  sleepContext,
		logger: logger,
	}
}

// do invokes attempt up to MaxRetries+1 times. On exhaustion (or a
// non-retryable failure) the last error is mapped to its terminal
// classification.
func (t *transport) do(ctx context.Context, attempt func(ctx context.Context) error) error {
	var lastErr error

	for n := 0; n <= t.policy.MaxRetries; n++ {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if n == t.policy.MaxRetries || !retryable(err) {
			break
		}

		delay := t.policy.Delay(n)
		t.logger.Warn("upstream request failed, retrying",
			"attempt", n+1,
			"max_attempts", t.policy.MaxRetries+1,
			"delay", delay,
			"error", err,
		)
		if err := t.sleep(ctx, delay); err != nil {
			return classify(lastErr)
		}
	}

	return classify(lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
