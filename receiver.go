package flowrt

import (
	"context"
	"sync/atomic"
)

// receiverState is shared by a Receiver and every value-copy of it, so
// that marking the handle ready (or releasing it) is visible regardless
// of which copy observes it first.
type receiverState struct {
	settled atomic.Bool
	ready   atomic.Bool
}

// Receiver is a copyable handle denoting a not-yet-attached downstream
// slot on a stage. Composing it with [Pipe] (or [PipeFunc]/[PipeCtx])
// attaches a new stage and marks the receiver ready; composing the same
// ready receiver again attaches a further stage alongside the first,
// which is how fan-out is expressed. A receiver
// that will never be composed must be released explicitly with
// [Receiver.Release] so the stage feeding it isn't left waiting forever
// for an attachment decision that will never come.
type Receiver[T any] struct {
	proc  outbound[T]
	state *receiverState
}

func newReceiver[T any](proc outbound[T]) Receiver[T] {
	proc.addReceiver()
	return Receiver[T]{proc: proc, state: &receiverState{}}
}

// Ready reports whether this receiver (or an earlier copy of the same
// handle) has been composed at least once.
func (r Receiver[T]) Ready() bool { return r.state.ready.Load() }

// released reports whether this handle was abandoned via Release without
// ever being composed.
func (r Receiver[T]) released() bool { return r.state.settled.Load() && !r.state.ready.Load() }

// SetReady marks the receiver ready without composing a further stage,
// for a terminal sink that consumes values itself (see [Sink]). It is
// idempotent; calling it on an already-ready or already-released
// receiver does nothing further.
func (r Receiver[T]) SetReady() {
	if r.state.ready.Load() {
		return
	}
	if r.state.settled.CompareAndSwap(false, true) {
		r.state.ready.Store(true)
		r.proc.removeReceiver()
	}
}

// Release abandons the receiver: if it was never composed and never
// marked ready, this decrements the owning stage's receiver_count,
// letting the stage run eagerly (and discard output) instead of waiting
// for an attachment that will never arrive. Releasing an already-ready
// receiver does nothing, since the downstream edge already owns the
// stage's liveness.
func (r Receiver[T]) Release() {
	if r.state.ready.Load() {
		return
	}
	if r.state.settled.CompareAndSwap(false, true) {
		r.proc.removeReceiver()
	}
}

// Pipe attaches a new stage built from p downstream of r, returning a
// receiver for the new stage's output. Composition is a package-level
// function rather than a method because it introduces the new Yield type
// parameter, which Go methods cannot do.
func Pipe[Arg, Yield any](r Receiver[Arg], p Process[Arg, Yield], opts ...Option) (Receiver[Yield], error) {
	var zero Receiver[Yield]
	if r.released() {
		return zero, ErrReceiverReleased
	}
	if r.proc.isVoid() {
		return zero, ErrVoidYield
	}

	base := r.proc.stageConfig()
	cfg := newStageConfig(opts, &base)
	child := newSharedProcess[Arg, Yield](p, r.proc, cfg)
	sender := newSender[Arg](child)
	r.proc.appendDownstream(sender)
	r.SetReady()

	return newReceiver[Yield](child), nil
}

// PipeFunc is [Pipe] for a plain function, via [FromFunc].
func PipeFunc[Arg, Yield any](r Receiver[Arg], f func(Arg) Yield, opts ...Option) (Receiver[Yield], error) {
	return Pipe(r, FromFunc(f), opts...)
}

// PipeCtx is [Pipe] for a context-and-error function, via
// [FromFuncContext]. onErr is invoked (never concurrently) for every
// error the function returns, including after retries are exhausted if
// the stage is wrapped with middleware.Retry.
func PipeCtx[Arg, Yield any](r Receiver[Arg], f func(context.Context, Arg) (Yield, error), onErr ErrorHandler[Arg], opts ...Option) (Receiver[Yield], error) {
	return Pipe(r, FromFuncContext(f, onErr), opts...)
}

// Sink attaches a terminal, void-yielding stage that invokes handle for
// every value it receives, and marks r ready. It has no further receiver
// to return since a void-yield stage cannot be composed downstream.
func Sink[T any](r Receiver[T], handle func(T), opts ...Option) error {
	_, err := Pipe[T, struct{}](r, FromFunc(func(v T) struct{} {
		handle(v)
		return struct{}{}
	}), opts...)
	return err
}
