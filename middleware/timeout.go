package middleware

import "time"

// Timeout bounds each invocation by d, deriving the deadline from the
// caller's context so shutdown still cancels early. It is shorthand for
// [Context] with only Timeout set. Zero or negative d disables the
// deadline entirely.
func Timeout[In, Out any](d time.Duration) Middleware[In, Out] {
	if d <= 0 {
		return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] { return next }
	}
	return Context[In, Out](ContextConfig{Timeout: d})
}
