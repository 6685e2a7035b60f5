package middleware

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestConstantBackoff_JitterRange(t *testing.T) {
	baseBackoff := 100 * time.Millisecond
	backoffFunc := ConstantBackoff(baseBackoff, 0.2)

	var backoffs []time.Duration
	for i := 0; i < 10; i++ {
		backoffs = append(backoffs, backoffFunc(i+1))
	}

	minExpected := time.Duration(float64(baseBackoff) * 0.8)
	maxExpected := time.Duration(float64(baseBackoff) * 1.2)
	for i, d := range backoffs {
		if d < minExpected || d > maxExpected {
			t.Errorf("backoff %d (%v) outside jitter range [%v, %v]", i, d, minExpected, maxExpected)
		}
	}

	allSame := true
	for i := 1; i < len(backoffs); i++ {
		if backoffs[i] != backoffs[0] {
			allSame = false
			break
		}
	}
	if allSame {
		t.Error("all backoffs identical, jitter may not be applied")
	}
}

func TestExponentialBackoff_GrowthAndCap(t *testing.T) {
	base := 10 * time.Millisecond
	maxBackoff := 40 * time.Millisecond
	backoffFunc := ExponentialBackoff(base, 2.0, maxBackoff, 0)

	for attempt := 1; attempt <= 5; attempt++ {
		want := time.Duration(float64(base) * math.Pow(2.0, float64(attempt-1)))
		if want > maxBackoff {
			want = maxBackoff
		}
		if got := backoffFunc(attempt); got != want {
			t.Errorf("attempt %d: got %v, want %v", attempt, got, want)
		}
	}
}

func TestShouldRetry_MatchesListedErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	all := ShouldRetry()
	if !all(errA) {
		t.Error("empty list should retry every error")
	}

	only := ShouldRetry(errA)
	if !only(errA) || only(errB) {
		t.Error("listed errors only should trigger retry")
	}

	none := ShouldNotRetry()
	if none(errA) {
		t.Error("empty skip-list should retry nothing")
	}

	skip := ShouldNotRetry(errA)
	if skip(errA) || !skip(errB) {
		t.Error("skip-listed errors must not trigger retry")
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	fn := Retry[int, int](RetryConfig{
		MaxAttempts: 5,
		Backoff:     ConstantBackoff(time.Millisecond, 0),
	})(func(ctx context.Context, in int) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return in * 2, nil
	})

	out, err := fn(context.Background(), 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 42 {
		t.Errorf("got %d, want 42", out)
	}
	if attempts != 3 {
		t.Errorf("got %d attempts, want 3", attempts)
	}
}

func TestRetry_MaxAttemptsExhausted(t *testing.T) {
	cause := errors.New("always fails")
	attempts := 0
	fn := Retry[int, int](RetryConfig{
		MaxAttempts: 3,
		Backoff:     ConstantBackoff(time.Millisecond, 0),
	})(func(ctx context.Context, in int) (int, error) {
		attempts++
		return 0, cause
	})

	_, err := fn(context.Background(), 1)
	if !errors.Is(err, ErrRetryMaxAttempts) {
		t.Fatalf("expected ErrRetryMaxAttempts, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("final error should wrap the underlying cause")
	}
	if attempts != 3 {
		t.Errorf("got %d attempts, want 3", attempts)
	}

	state := RetryStateFromError(err)
	if state == nil {
		t.Fatal("expected retry state attached to error")
	}
	if state.Attempts != 3 || len(state.Causes) != 3 {
		t.Errorf("state attempts=%d causes=%d, want 3/3", state.Attempts, len(state.Causes))
	}
	if !errors.Is(state.Err, ErrRetryMaxAttempts) {
		t.Errorf("state.Err = %v, want ErrRetryMaxAttempts", state.Err)
	}
}

func TestRetry_NotRetryableError(t *testing.T) {
	fatal := errors.New("fatal")
	attempts := 0
	fn := Retry[int, int](RetryConfig{
		ShouldRetry: ShouldNotRetry(fatal),
		MaxAttempts: 5,
		Backoff:     ConstantBackoff(time.Millisecond, 0),
	})(func(ctx context.Context, in int) (int, error) {
		attempts++
		return 0, fatal
	})

	_, err := fn(context.Background(), 1)
	if !errors.Is(err, ErrRetryNotRetryable) {
		t.Fatalf("expected ErrRetryNotRetryable, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("got %d attempts, want 1", attempts)
	}
}

func TestRetry_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fn := Retry[int, int](RetryConfig{
		MaxAttempts: 0, // withDefaults maps negatives to unlimited; 0 keeps default
		Backoff:     ConstantBackoff(50*time.Millisecond, 0),
	})(func(ctx context.Context, in int) (int, error) {
		cancel()
		return 0, errors.New("fail")
	})

	_, err := fn(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_TimeoutReached(t *testing.T) {
	fn := Retry[int, int](RetryConfig{
		MaxAttempts: -1,
		Timeout:     20 * time.Millisecond,
		Backoff:     ConstantBackoff(5*time.Millisecond, 0),
	})(func(ctx context.Context, in int) (int, error) {
		return 0, errors.New("fail")
	})

	_, err := fn(context.Background(), 1)
	if !errors.Is(err, ErrRetryTimeout) {
		t.Fatalf("expected ErrRetryTimeout, got %v", err)
	}
}

func TestRetry_StateVisibleInsideAttempt(t *testing.T) {
	var seen []int
	fn := Retry[int, int](RetryConfig{
		MaxAttempts: 3,
		Backoff:     ConstantBackoff(time.Millisecond, 0),
	})(func(ctx context.Context, in int) (int, error) {
		state := RetryStateFromContext(ctx)
		if state == nil {
			t.Fatal("expected retry state in context")
		}
		seen = append(seen, state.Attempts)
		if state.Attempts < 2 {
			return 0, errors.New("again")
		}
		return in, nil
	})

	if _, err := fn(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("attempt numbers = %v, want [1 2]", seen)
	}
}
