package flowrt

import "sync/atomic"

// Sender is a copyable, reference-counted handle for feeding values into
// a stage. Every live Sender contributes to the stage's sender count;
// when the last one closes, the stage's queue is marked closed and
// drains to completion on its own schedule.
//
// Go has no destructors, so a Sender must be closed explicitly; see
// [Sender.Close]. Closing is idempotent
// and safe to call more than once or not at all from a clone produced by
// [Sender.Clone]; forgetting to close a clone simply leaves the stage
// believing a producer is still attached.
type Sender[T any] struct {
	target inbound[T]
	closed *atomic.Bool
}

func newSender[T any](target inbound[T]) Sender[T] {
	target.addSender()
	return Sender[T]{target: target, closed: new(atomic.Bool)}
}

// Send enqueues v for processing. Sending on a closed handle, or on a
// sender whose target stage has already torn down, is a silent no-op.
func (s Sender[T]) Send(v T) {
	if s.target == nil || s.closed.Load() {
		return
	}
	s.target.send(v)
}

// Clone returns an independent handle contributing its own count to the
// stage's sender_count; both the original and the clone must eventually
// be closed.
func (s Sender[T]) Clone() Sender[T] {
	if s.target == nil {
		return s
	}
	return newSender[T](s.target)
}

// Close disarms this handle and, if this was the last live sender for
// the target stage, marks its queue closed so it drains and tears down
// once empty.
func (s Sender[T]) Close() {
	if s.target == nil {
		return
	}
	if s.closed.CompareAndSwap(false, true) {
		s.target.removeSender()
	}
}
