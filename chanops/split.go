package chanops

import (
	"github.com/mvandenburg/flowrt"
)

// Split fans r out into n identity branches, each receiving every value
// the source stage yields. It is sugar over composing r repeatedly; use
// it when the branch count is data-driven rather than written out by
// hand.
func Split[T any](r flowrt.Receiver[T], n int) ([]flowrt.Receiver[T], error) {
	outs := make([]flowrt.Receiver[T], 0, n)
	for i := 0; i < n; i++ {
		out, err := flowrt.PipeFunc(r, func(v T) T { return v })
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}
