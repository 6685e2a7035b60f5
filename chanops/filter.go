package chanops

import (
	"github.com/mvandenburg/flowrt"
)

// filterProc holds at most one pending value: inputs rejected by keep
// are dropped in Await, accepted ones flip the stage to yield.
type filterProc[T any] struct {
	keep func(T) bool
	v    T
	has  bool
}

func (p *filterProc[T]) Await(v T) {
	if p.keep(v) {
		p.v = v
		p.has = true
	}
}

func (p *filterProc[T]) Yield() T {
	out := p.v
	var zero T
	p.v = zero
	p.has = false
	return out
}

func (p *filterProc[T]) State() flowrt.ProcessState {
	if p.has {
		return flowrt.StateYield
	}
	return flowrt.StateAwait
}

func (p *filterProc[T]) Close() {}

// Filter attaches a stage that passes through only the values for which
// keep reports true, preserving their relative order.
func Filter[T any](r flowrt.Receiver[T], keep func(T) bool) (flowrt.Receiver[T], error) {
	return flowrt.Pipe[T, T](r, &filterProc[T]{keep: keep})
}
