package chanops

import (
	"github.com/mvandenburg/flowrt"
)

// forwarder is a void-yield stage that re-sends every input into another
// pipeline head. Each forwarder owns its own clone of the head's sender,
// so the merged head stays open until every source pipeline has closed
// through its forwarder.
type forwarder[T any] struct {
	out flowrt.Sender[T]
}

func (f *forwarder[T]) Await(v T)                  { f.out.Send(v) }
func (f *forwarder[T]) Yield() struct{}            { return struct{}{} }
func (f *forwarder[T]) State() flowrt.ProcessState { return flowrt.StateAwait }
func (f *forwarder[T]) Close()                     { f.out.Close() }

// Merge fans several receivers into one: every value arriving on any of
// rs is forwarded to the returned receiver, with no ordering guarantee
// across sources. The merged stage closes once all sources have closed.
// With no sources the result closes immediately.
func Merge[T any](rs ...flowrt.Receiver[T]) (flowrt.Receiver[T], error) {
	send, recv := flowrt.Channel[T]()
	for _, r := range rs {
		if _, err := flowrt.Pipe[T, struct{}](r, &forwarder[T]{out: send.Clone()}); err != nil {
			send.Close()
			return flowrt.Receiver[T]{}, err
		}
	}
	// The forwarders hold their own clones; this handle's count is no
	// longer needed.
	send.Close()
	return recv, nil
}
