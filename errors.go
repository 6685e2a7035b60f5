package flowrt

import (
	"errors"
	"fmt"
)

// ErrReceiverReleased is returned by Pipe/PipeFunc/PipeCtx when the given
// receiver was already explicitly abandoned via Receiver.Release.
// Composing the same ready receiver more than once is not an error (that
// is how fan-out is expressed); only composing past an explicit Release
// is rejected.
var ErrReceiverReleased = errors.New("flowrt: receiver was released and can no longer be composed")

// ErrVoidYield is returned by Pipe/PipeFunc/PipeCtx when attempting to
// compose a further stage from a receiver whose Yield type is the empty
// struct (a sink stage broadcasts nothing).
var ErrVoidYield = errors.New("flowrt: cannot compose downstream of a void-yield stage")

// assertionError marks a violated runtime invariant. It is implemented
// as a panic rather than a returned error because these indicate a bug
// in the runtime itself, not a caller or user-process failure.
type assertionError struct {
	msg string
}

func (e *assertionError) Error() string { return "flowrt: invariant violated: " + e.msg }

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(&assertionError{msg: fmt.Sprintf(format, args...)})
	}
}
