package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
)

var errBackend = errors.New("backend unavailable")

func TestCircuitBreakerLifecycle(t *testing.T) {
	var transitions []State
	cb := NewCircuitBreaker("report-store", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Second,
		OnStateChange:    func(_ string, to State) { transitions = append(transitions, to) },
	})
	clock := time.Unix(1_700_000_000, 0)
	cb.now = func() time.Time { return clock }

	fail := func() error { return errBackend }
	ok := func() error { return nil }

	cb.Execute(fail)
	if cb.GetState() != StateClosed {
		t.Fatal("opened before threshold")
	}
	cb.Execute(fail)
	if cb.GetState() != StateOpen {
		t.Fatal("did not open at threshold")
	}
	if err := cb.Execute(ok); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open breaker returned %v", err)
	}

	clock = clock.Add(time.Second)
	if err := cb.Execute(ok); err != nil {
		t.Errorf("half-open probe returned %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state after successful probe = %s", cb.GetState())
	}

	want := []State{StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker("x", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second})
	clock := time.Unix(0, 0)
	cb.now = func() time.Time { return clock }

	cb.Execute(func() error { return errBackend })
	clock = clock.Add(2 * time.Second)
	cb.Execute(func() error { return errBackend })
	if cb.GetState() != StateOpen {
		t.Errorf("state = %s, want open", cb.GetState())
	}
	cb.Reset()
	if cb.GetState() != StateClosed {
		t.Errorf("state after reset = %s", cb.GetState())
	}
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	err := Retry(context.Background(), "save", cfg, func() error {
		calls++
		if calls < 3 {
			return errBackend
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry = %v after %d calls", err, calls)
	}

	calls = 0
	err = Retry(context.Background(), "save", cfg, func() error {
		calls++
		return errBackend
	})
	if !errors.Is(err, errBackend) || calls != 3 {
		t.Errorf("exhausted Retry = %v after %d calls", err, calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	cfg := RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		Retryable:    func(err error) bool { return !errors.Is(err, permanent) },
	}
	calls := 0
	err := Retry(context.Background(), "save", cfg, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("Retry = %v after %d calls", err, calls)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "save", RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour}, func() error { return errBackend })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, apperrors.ErrTimeout) {
		t.Errorf("WithTimeout = %v, want ErrTimeout wrapping DeadlineExceeded", err)
	}
	if code := apperrors.HTTPStatusCode(err); code != 503 {
		t.Errorf("status = %d, want 503", code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = WithTimeout(ctx, time.Second, "cancelled", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) || errors.Is(err, apperrors.ErrTimeout) {
		t.Errorf("cancelled parent = %v, want context.Canceled only", err)
	}

	if err := WithTimeout(context.Background(), 0, "direct", func(context.Context) error { return nil }); err != nil {
		t.Errorf("zero timeout = %v", err)
	}
}
