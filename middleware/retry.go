package middleware

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

var (
	// ErrRetry is the base error every retry failure wraps.
	ErrRetry = errors.New("flowrt retry")

	// ErrRetryMaxAttempts reports that the attempt budget ran out.
	ErrRetryMaxAttempts = fmt.Errorf("%w: max attempts reached", ErrRetry)

	// ErrRetryTimeout reports that the overall retry deadline passed.
	ErrRetryTimeout = fmt.Errorf("%w: timeout reached", ErrRetry)

	// ErrRetryNotRetryable reports an error the policy refuses to retry.
	ErrRetryNotRetryable = fmt.Errorf("%w: not retryable", ErrRetry)
)

// BackoffFunc maps a one-based attempt number to the wait before the
// next attempt.
type BackoffFunc func(attempt int) time.Duration

// jittered spreads d by up to ±jitter·d. Jitter is clamped to [0, 1];
// zero returns d unchanged.
func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	if jitter > 1 {
		jitter = 1
	}
	spread := (rand.Float64()*2 - 1) * jitter
	return d + time.Duration(spread*float64(d))
}

// ConstantBackoff waits the same base delay between attempts, spread by
// jitter (0 disables, 0.2 means ±20%).
func ConstantBackoff(delay time.Duration, jitter float64) BackoffFunc {
	return func(int) time.Duration {
		return jittered(delay, jitter)
	}
}

// ExponentialBackoff grows the wait by factor per attempt, starting at
// initialDelay, capped at maxDelay (0 leaves it uncapped), spread by
// jitter.
func ExponentialBackoff(initialDelay time.Duration, factor float64, maxDelay time.Duration, jitter float64) BackoffFunc {
	return func(attempt int) time.Duration {
		d := float64(initialDelay)
		for i := 1; i < attempt; i++ {
			d *= factor
			if maxDelay > 0 && d >= float64(maxDelay) {
				d = float64(maxDelay)
				break
			}
		}
		return jittered(time.Duration(d), jitter)
	}
}

// ShouldRetryFunc decides whether a failed attempt is worth repeating.
type ShouldRetryFunc func(error) bool

// ShouldRetry retries only errors matching the given list. With an
// empty list every error is retried.
func ShouldRetry(errs ...error) ShouldRetryFunc {
	if len(errs) == 0 {
		return func(error) bool { return true }
	}
	return func(err error) bool {
		return slices.ContainsFunc(errs, func(e error) bool { return errors.Is(err, e) })
	}
}

// ShouldNotRetry retries everything except errors matching the given
// list. With an empty list nothing is retried.
func ShouldNotRetry(errs ...error) ShouldRetryFunc {
	if len(errs) == 0 {
		return func(error) bool { return false }
	}
	listed := ShouldRetry(errs...)
	return func(err error) bool { return !listed(err) }
}

// RetryConfig configures the retry policy.
type RetryConfig struct {
	// ShouldRetry filters which errors are retried. Nil retries all.
	ShouldRetry ShouldRetryFunc

	// Backoff produces the wait between attempts. Nil defaults to one
	// second constant backoff with ±20% jitter.
	Backoff BackoffFunc

	// MaxAttempts bounds total attempts including the first. Zero means
	// the default of 3; negative means unlimited.
	MaxAttempts int

	// Timeout bounds the whole retry sequence. Zero or negative means
	// the default of one minute.
	Timeout time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.ShouldRetry == nil {
		c.ShouldRetry = ShouldRetry()
	}
	if c.Backoff == nil {
		c.Backoff = ConstantBackoff(time.Second, 0.2)
	}
	switch {
	case c.MaxAttempts == 0:
		c.MaxAttempts = 3
	case c.MaxAttempts < 0:
		c.MaxAttempts = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Minute
	}
	return c
}

// RetryState records the history of one retry sequence. It is visible
// inside attempts via [RetryStateFromContext] and attached to the final
// error, recoverable with [RetryStateFromError].
type RetryState struct {
	// Timeout is the configured overall deadline.
	Timeout time.Duration
	// MaxAttempts is the configured attempt budget, 0 for unlimited.
	MaxAttempts int
	// Start is when the first attempt began.
	Start time.Time
	// Attempts counts attempts made so far, one-based.
	Attempts int
	// Duration is the elapsed time since Start, updated per attempt.
	Duration time.Duration
	// Causes collects the error from every failed attempt in order.
	Causes []error
	// Err is the reason the sequence stopped.
	Err error
}

// abort stamps the final error onto the state and wraps it so callers
// can match both the stop reason and every underlying cause.
func (s *RetryState) abort(reason error) error {
	s.Err = reason
	s.Duration = time.Since(s.Start)
	return &retryAbort{state: s}
}

type retryStateKey struct{}

func withRetryState(ctx context.Context, st *RetryState) context.Context {
	return context.WithValue(ctx, retryStateKey{}, st)
}

// RetryStateFromContext returns the in-progress retry state inside an
// attempt, or nil when the call is not running under [Retry].
func RetryStateFromContext(ctx context.Context) *RetryState {
	if ctx == nil {
		return nil
	}
	st, _ := ctx.Value(retryStateKey{}).(*RetryState)
	return st
}

// RetryStateFromError returns the retry state attached to a final retry
// error, or nil for any other error.
func RetryStateFromError(err error) *RetryState {
	var abort *retryAbort
	if errors.As(err, &abort) {
		return abort.state
	}
	return nil
}

// retryAbort is the error returned when a retry sequence gives up. Its
// unwrap chain exposes the stop reason first, then every attempt cause.
type retryAbort struct {
	state *RetryState
}

func (a *retryAbort) Error() string {
	st := a.state
	if len(st.Causes) == 0 {
		return st.Err.Error()
	}
	return fmt.Sprintf("%v after %d attempts: %v", st.Err, st.Attempts, st.Causes[len(st.Causes)-1])
}

func (a *retryAbort) Unwrap() []error {
	return append([]error{a.state.Err}, a.state.Causes...)
}

// waitBackoff sleeps for d, cut short by the caller's context or by the
// overall deadline. A zero deadline means no overall bound.
func waitBackoff(ctx context.Context, d time.Duration, deadline time.Time) error {
	timedOut := false
	if !deadline.IsZero() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrRetryTimeout
		}
		if d >= remaining {
			d = remaining
			timedOut = true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		if timedOut {
			return ErrRetryTimeout
		}
		return nil
	}
}

// Retry repeats the wrapped function until it succeeds, the policy
// refuses the error, the attempt budget runs out, or the overall
// deadline passes. The final error wraps the stop reason and every
// attempt's cause.
func Retry[In, Out any](cfg RetryConfig) Middleware[In, Out] {
	cfg = cfg.withDefaults()
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (Out, error) {
			var zero Out
			st := &RetryState{
				Timeout:     cfg.Timeout,
				MaxAttempts: cfg.MaxAttempts,
				Start:       time.Now(),
			}
			var deadline time.Time
			if cfg.Timeout > 0 {
				deadline = st.Start.Add(cfg.Timeout)
			}
			attemptCtx := withRetryState(ctx, st)

			for {
				st.Attempts++
				out, err := next(attemptCtx, in)
				if err == nil {
					return out, nil
				}
				st.Causes = append(st.Causes, err)
				st.Duration = time.Since(st.Start)

				switch {
				case !cfg.ShouldRetry(err):
					return zero, st.abort(ErrRetryNotRetryable)
				case cfg.MaxAttempts > 0 && st.Attempts >= cfg.MaxAttempts:
					return zero, st.abort(ErrRetryMaxAttempts)
				}

				if waitErr := waitBackoff(ctx, cfg.Backoff(st.Attempts), deadline); waitErr != nil {
					return zero, st.abort(waitErr)
				}
			}
		}
	}
}
