package chanops

import (
	"github.com/mvandenburg/flowrt"
)

// drainSink discards every input and signals completion from its Close
// hook.
type drainSink[T any] struct {
	done chan struct{}
}

func (s *drainSink[T]) Await(T)                    {}
func (s *drainSink[T]) Yield() struct{}            { return struct{}{} }
func (s *drainSink[T]) State() flowrt.ProcessState { return flowrt.StateAwait }
func (s *drainSink[T]) Close()                     { close(s.done) }

// Drain attaches a terminal stage that discards every value from r and
// returns a channel that is closed once the pipeline has closed through
// the drain. Use it to keep an otherwise-unconsumed tail flowing, or to
// block until a pipeline finishes.
func Drain[T any](r flowrt.Receiver[T]) (<-chan struct{}, error) {
	sink := &drainSink[T]{done: make(chan struct{})}
	if _, err := flowrt.Pipe[T, struct{}](r, sink); err != nil {
		return nil, err
	}
	return sink.done, nil
}
