package flowrt

// Channel creates a head stage with no upstream: an identity process
// that simply re-broadcasts whatever it receives. It is the entry point
// for feeding external values into a pipeline.
//
//	send, recv := flowrt.Channel[int]()
//	out, _ := flowrt.PipeFunc(recv, func(v int) int { return v * 2 })
func Channel[T any](opts ...Option) (Sender[T], Receiver[T]) {
	cfg := newStageConfig(opts, nil)
	proc := newSharedProcess[T, T](FromFunc(identity[T]), nil, cfg)
	return newSender[T](proc), newReceiver[T](proc)
}

func identity[T any](v T) T { return v }
