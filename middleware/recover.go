package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
)

// RecoveryError carries a recovered panic value and the stack captured
// at the panic site, letting a panic travel the normal error path.
type RecoveryError struct {
	// PanicValue is the value the panic was raised with.
	PanicValue any
	// StackTrace is the goroutine stack at the point of recovery.
	StackTrace string
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.PanicValue)
}

// guard runs fn and converts any panic into a *RecoveryError, returning
// the zero Out alongside it.
func guard[Out any](fn func() (Out, error)) (out Out, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var zero Out
		out = zero
		err = &RecoveryError{PanicValue: r, StackTrace: string(debug.Stack())}
	}()
	return fn()
}

// Recover converts panics in the wrapped function into errors, so one
// poisoned input fails through the stage's error handler instead of
// crashing the executor's worker.
func Recover[In, Out any]() Middleware[In, Out] {
	return func(next ProcessFunc[In, Out]) ProcessFunc[In, Out] {
		return func(ctx context.Context, in In) (Out, error) {
			return guard(func() (Out, error) { return next(ctx, in) })
		}
	}
}
