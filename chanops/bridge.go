package chanops

import (
	"github.com/mvandenburg/flowrt"
)

// Feed pumps every value from in into s, closing s when in closes. It
// runs on its own goroutine and returns immediately. A pipeline head fed
// this way drains and finalizes once the source channel closes, provided
// s is the last live sender.
func Feed[T any](s flowrt.Sender[T], in <-chan T) {
	go func() {
		defer s.Close()
		for val := range in {
			s.Send(val)
		}
	}()
}

// chanSink forwards every received value to a raw channel and closes the
// channel once the pipeline's close has propagated to this stage.
type chanSink[T any] struct {
	out chan T
}

func (s *chanSink[T]) Await(v T)                  { s.out <- v }
func (s *chanSink[T]) Yield() struct{}            { return struct{}{} }
func (s *chanSink[T]) State() flowrt.ProcessState { return flowrt.StateAwait }
func (s *chanSink[T]) Close()                     { close(s.out) }

// Out attaches a terminal stage to r that forwards every value into the
// returned channel, which is closed once the pipeline closes through this
// stage. buffer sets the channel's capacity; a full buffer blocks the
// stage's step, which in turn suspends the upstream through the runtime's
// flow control.
func Out[T any](r flowrt.Receiver[T], buffer int) (<-chan T, error) {
	sink := &chanSink[T]{out: make(chan T, buffer)}
	if _, err := flowrt.Pipe[T, struct{}](r, sink); err != nil {
		return nil, err
	}
	return sink.out, nil
}
