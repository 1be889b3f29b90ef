package ai

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey indicates the upstream credential was never
// configured. This is a deployment fault, not a runtime failure, and is
// reported before any rate-limit check or network attempt.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is not configured")

// RateLimitError is returned when the local admission window is full or
// when the upstream kept answering 429 after retry exhaustion. Both are
// surfaced identically to callers, with a suggested wait.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// FailureClass is the terminal classification of an upstream failure
// after retries are exhausted.
type FailureClass string

const (
	FailureTimeout     FailureClass = "upstream_timeout"
	FailureUnavailable FailureClass = "upstream_unavailable"
	FailureNetwork     FailureClass = "network_failure"
	FailureRequest     FailureClass = "request_failed"
)

// UpstreamError wraps the last failure of a call to the completion API.
type UpstreamError struct {
	Class  FailureClass
	Status int // HTTP status when the failure was a status error, 0 otherwise
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// statusError carries a non-2xx upstream response through the retry loop.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.status, e.body)
}
