package middleware

import (
	"context"
	"time"
)

// ContextConfig controls how the wrapped function's context is derived
// from the caller's.
type ContextConfig struct {
	// Timeout bounds each invocation. Zero leaves the context unbounded.
	Timeout time.Duration

	// Background detaches each invocation from the caller's context, so
	// pipeline cancellation does not interrupt in-flight work.
	Background bool

	// ReturnWhenDone skips the invocation entirely when the caller's
	// context is already canceled, returning its error. Lets a canceled
	// pipeline drain without doing further work.
	ReturnWhenDone bool
}

// Context derives a fresh context per invocation according to cfg. The
// three knobs compose: cancellation is checked first, then the base
// context is chosen, then the per-call deadline is layered on.
func Context[In, Out any](cfg ContextConfig) Middleware[In, Out] {
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (Out, error) {
			if cfg.ReturnWhenDone {
				if err := ctx.Err(); err != nil {
					var zero Out
					return zero, err
				}
			}
			base := ctx
			if cfg.Background {
				base = context.Background()
			}
			if cfg.Timeout <= 0 {
				return next(base, in)
			}
			timed, cancel := context.WithTimeout(base, cfg.Timeout)
			defer cancel()
			return next(timed, in)
		}
	}
}
