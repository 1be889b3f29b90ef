package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"
)

func testTransport(sleeps *[]time.Duration) *transport {
	tr := newTransport(DefaultRetryPolicy(), slog.New(slog.DiscardHandler))
	tr.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return tr
}

func TestRetryDelaysDouble(t *testing.T) {
	p := DefaultRetryPolicy()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for n, d := range want {
		if got := p.Delay(n); got != d {
			t.Errorf("Delay(%d): expected %v, got %v", n, d, got)
		}
	}
}

func TestRetryDelayCapped(t *testing.T) {
	p := DefaultRetryPolicy()
	if got := p.Delay(10); got != p.MaxDelay {
		t.Errorf("Expected cap at %v, got %v", p.MaxDelay, got)
	}
}

func TestTransientFailureThenSuccess(t *testing.T) {
	var sleeps []time.Duration
	tr := testTransport(&sleeps)

	attempts := 0
	err := tr.do(context.Background(), func(context.Context) error {
		attempts++
		if attempts <= 2 {
			return &statusError{status: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(sleeps) != len(want) || sleeps[0] != want[0] || sleeps[1] != want[1] {
		t.Errorf("Expected delays %v, got %v", want, sleeps)
	}
}

func TestNonRetryableFailsImmediately(t *testing.T) {
	var sleeps []time.Duration
	tr := testTransport(&sleeps)

	attempts := 0
	err := tr.do(context.Background(), func(context.Context) error {
		attempts++
		return &statusError{status: 400}
	})
	if attempts != 1 {
		t.Errorf("Expected single attempt for 400, got %d", attempts)
	}
	if len(sleeps) != 0 {
		t.Errorf("Expected no sleeps, got %v", sleeps)
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Class != FailureRequest {
		t.Errorf("Expected request failure classification, got %v", err)
	}
}

func TestExhaustionStopsAtFourAttempts(t *testing.T) {
	var sleeps []time.Duration
	tr := testTransport(&sleeps)

	attempts := 0
	err := tr.do(context.Background(), func(context.Context) error {
		attempts++
		return &statusError{status: 502}
	})
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
	if len(sleeps) != 3 {
		t.Errorf("Expected 3 sleeps, got %d", len(sleeps))
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Class != FailureUnavailable {
		t.Errorf("Expected upstream_unavailable, got %v", err)
	}
}

func TestExhausted429BecomesRateLimitError(t *testing.T) {
	var sleeps []time.Duration
	tr := testTransport(&sleeps)

	err := tr.do(context.Background(), func(context.Context) error {
		return &statusError{status: 429}
	})

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("Expected RateLimitError, got %v", err)
	}
	if rle.RetryAfter != time.Minute {
		t.Errorf("Expected retry_after of 1 minute, got %v", rle.RetryAfter)
	}
}

func TestTimeoutClassification(t *testing.T) {
	var sleeps []time.Duration
	tr := testTransport(&sleeps)

	err := tr.do(context.Background(), func(context.Context) error {
		return context.DeadlineExceeded
	})

	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Class != FailureTimeout {
		t.Errorf("Expected upstream_timeout, got %v", err)
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	var sleeps []time.Duration
	tr := testTransport(&sleeps)

	netErr := &url.Error{Op: "Post", URL: "https://example.invalid", Err: errors.New("connection refused")}
	err := tr.do(context.Background(), func(context.Context) error {
		return netErr
	})

	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Class != FailureNetwork {
		t.Errorf("Expected network_failure, got %v", err)
	}
}

func TestCanceledContextStopsRetrying(t *testing.T) {
	tr := newTransport(DefaultRetryPolicy(), slog.New(slog.DiscardHandler))
	tr.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	attempts := 0
	err := tr.do(context.Background(), func(context.Context) error {
		attempts++
		return &statusError{status: 503}
	})
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation stopped retries, got %d", attempts)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Class != FailureUnavailable {
		t.Errorf("Expected last failure classified, got %v", err)
	}
}
