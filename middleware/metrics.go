package middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Sentinel errors collectors can match when categorizing outcomes.
var (
	ErrFailure = errors.New("processing failed")
	ErrCancel  = errors.New("processing cancelled")
)

// Metrics describes one invocation of a wrapped function.
type Metrics struct {
	Start    time.Time
	Duration time.Duration
	InFlight int

	Metadata   Metadata
	RetryState *RetryState

	Error error
}

// outcome maps a predicate over the invocation's error to a 0/1 counter
// increment.
func (m *Metrics) outcome(match func(error) bool) int {
	if match(m.Error) {
		return 1
	}
	return 0
}

// Success is 1 when the invocation returned no error.
func (m *Metrics) Success() int {
	return m.outcome(func(err error) bool { return err == nil })
}

// Failure is 1 when the error matches [ErrFailure].
func (m *Metrics) Failure() int {
	return m.outcome(func(err error) bool { return errors.Is(err, ErrFailure) })
}

// Cancel is 1 when the error indicates cancellation.
func (m *Metrics) Cancel() int {
	return m.outcome(func(err error) bool {
		return errors.Is(err, ErrCancel) || errors.Is(err, context.Canceled)
	})
}

// Retry is 1 when the error came from an exhausted retry sequence.
func (m *Metrics) Retry() int {
	return m.outcome(func(err error) bool { return errors.Is(err, ErrRetry) })
}

// MetricsCollector receives the metrics of each finished invocation.
type MetricsCollector func(metrics *Metrics)

// MetricsMiddleware measures every invocation: duration, concurrent
// in-flight count, outcome, plus whatever metadata and retry state the
// surrounding wrappers attached. The collector runs after the wrapped
// function returns, on the same goroutine.
func MetricsMiddleware[In, Out any](collect MetricsCollector) Middleware[In, Out] {
	var inFlight atomic.Int32
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (out Out, err error) {
			m := &Metrics{
				Start:      time.Now(),
				InFlight:   int(inFlight.Add(1)),
				Metadata:   MetadataFromContext(ctx),
				RetryState: RetryStateFromContext(ctx),
			}
			defer func() {
				inFlight.Add(-1)
				m.Duration = time.Since(m.Start)
				m.Error = err
				if m.RetryState != nil {
					m.RetryState.Duration = time.Since(m.RetryState.Start)
				}
				collect(m)
			}()
			return next(ctx, in)
		}
	}
}

// DistributeMetrics fans each Metrics value out to several collectors.
func DistributeMetrics(collectors ...MetricsCollector) MetricsCollector {
	return func(m *Metrics) {
		for _, c := range collectors {
			c(m)
		}
	}
}
