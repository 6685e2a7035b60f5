package flowrt

import "context"

// ErrorHandler handles a processing failure for one input. It is invoked
// from the stage's own task, never concurrently for the same stage.
type ErrorHandler[Arg any] func(in Arg, err error)

// ctxAdapter lifts a context-and-error function into the Process surface.
// A failed input is routed to the error handler and produces no yield, so
// the stage simply skips broadcasting for that input and keeps consuming.
type ctxAdapter[Arg, Yield any] struct {
	f      func(context.Context, Arg) (Yield, error)
	onErr  ErrorHandler[Arg]
	ctx    context.Context
	result Yield
	ready  bool
}

// FromFuncContext lifts f into the Process surface. Unlike [FromFunc],
// f receives a context and may fail; errors are reported to onErr (which
// may be nil to discard them) instead of surfacing through the Process
// interface, which stays total. The context passed to f is
// context.Background unless overridden with [FromFuncContextWith].
//
// Middleware from the middleware package (Retry, Timeout, Recover, ...)
// wraps f before it is lifted:
//
//	fn := middleware.Recover[int, int]()(process)
//	proc := flowrt.FromFuncContext(fn, logErrors)
func FromFuncContext[Arg, Yield any](f func(context.Context, Arg) (Yield, error), onErr ErrorHandler[Arg]) Process[Arg, Yield] {
	return FromFuncContextWith(context.Background(), f, onErr)
}

// FromFuncContextWith is [FromFuncContext] with an explicit base context,
// letting a caller tie every invocation of f to an application lifetime.
func FromFuncContextWith[Arg, Yield any](ctx context.Context, f func(context.Context, Arg) (Yield, error), onErr ErrorHandler[Arg]) Process[Arg, Yield] {
	return &ctxAdapter[Arg, Yield]{f: f, onErr: onErr, ctx: ctx}
}

func (a *ctxAdapter[Arg, Yield]) Await(v Arg) {
	out, err := a.f(a.ctx, v)
	if err != nil {
		if a.onErr != nil {
			a.onErr(v, err)
		}
		return
	}
	a.result = out
	a.ready = true
}

func (a *ctxAdapter[Arg, Yield]) Yield() Yield {
	out := a.result
	var zero Yield
	a.result = zero
	a.ready = false
	return out
}

func (a *ctxAdapter[Arg, Yield]) State() ProcessState {
	if a.ready {
		return StateYield
	}
	return StateAwait
}

func (a *ctxAdapter[Arg, Yield]) Close() {}
