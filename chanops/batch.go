package chanops

import (
	"github.com/mvandenburg/flowrt"
)

// batchProc accumulates inputs until a full batch is ready to yield.
type batchProc[T any] struct {
	size int
	buf  []T
}

func (p *batchProc[T]) Await(v T) { p.buf = append(p.buf, v) }

func (p *batchProc[T]) Yield() []T {
	out := p.buf
	p.buf = make([]T, 0, p.size)
	return out
}

func (p *batchProc[T]) State() flowrt.ProcessState {
	if len(p.buf) >= p.size {
		return flowrt.StateYield
	}
	return flowrt.StateAwait
}

func (p *batchProc[T]) Close() {}

// Batch groups consecutive values from r into slices of exactly size
// elements. A trailing partial batch is discarded when the pipeline
// closes before the batch fills; callers that must not lose the tail
// should pad the source or pick a size that divides the input count.
func Batch[T any](r flowrt.Receiver[T], size int) (flowrt.Receiver[[]T], error) {
	return flowrt.Pipe[T, []T](r, &batchProc[T]{size: size, buf: make([]T, 0, size)})
}
