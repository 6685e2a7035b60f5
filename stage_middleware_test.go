package flowrt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mvandenburg/flowrt"
	"github.com/mvandenburg/flowrt/middleware"
)

func TestPipeCtx_RecoverIsolatesPanickingInput(t *testing.T) {
	send, recv := flowrt.Channel[int]()

	fn := middleware.Recover[int, int]()(func(_ context.Context, v int) (int, error) {
		if v == 2 {
			panic("poison value")
		}
		return v * 10, nil
	})

	var failed collector[int]
	out, err := flowrt.PipeCtx(recv, fn, func(in int, err error) {
		var recErr *middleware.RecoveryError
		require.ErrorAs(t, err, &recErr)
		failed.add(in)
	})
	require.NoError(t, err)

	var sink collector[int]
	require.NoError(t, flowrt.Sink(out, sink.add))

	send.Send(1)
	send.Send(2)
	send.Send(3)
	send.Close()

	// The stage keeps consuming past the panicking input.
	require.Eventually(t, func() bool { return sink.len() == 2 && failed.len() == 1 }, waitFor, tick)
	require.Equal(t, []int{10, 30}, sink.snapshot())
	require.Equal(t, []int{2}, failed.snapshot())
}

func TestPipeCtx_RetryExhaustionReachesErrorHandler(t *testing.T) {
	send, recv := flowrt.Channel[int]()

	var attempts collector[int]
	fail := errors.New("flaky downstream")
	fn := middleware.Retry[int, int](middleware.RetryConfig{
		MaxAttempts: 3,
		Backoff:     middleware.ConstantBackoff(time.Millisecond, 0),
	})(func(_ context.Context, v int) (int, error) {
		attempts.add(v)
		return 0, fail
	})

	var failed collector[int]
	out, err := flowrt.PipeCtx(recv, fn, func(in int, err error) {
		require.ErrorIs(t, err, middleware.ErrRetryMaxAttempts)
		require.ErrorIs(t, err, fail)
		failed.add(in)
	})
	require.NoError(t, err)

	require.NoError(t, flowrt.Sink(out, func(int) {
		t.Error("no value should survive exhausted retries")
	}))

	send.Send(7)
	send.Close()

	require.Eventually(t, func() bool { return failed.len() == 1 }, waitFor, tick)
	require.Equal(t, []int{7, 7, 7}, attempts.snapshot())
	require.Equal(t, []int{7}, failed.snapshot())
}

func TestPipeCtx_ChainedMiddlewareAroundStage(t *testing.T) {
	send, recv := flowrt.Channel[string]()

	fn := middleware.Chain(
		middleware.Recover[string, string](),
		middleware.MetadataProvider[string, string](func(in string) middleware.Metadata {
			return middleware.Metadata{"input": in}
		}),
	)(func(ctx context.Context, in string) (string, error) {
		md := middleware.MetadataFromContext(ctx)
		return in + ":" + md["input"].(string), nil
	})

	out, err := flowrt.PipeCtx(recv, fn, nil)
	require.NoError(t, err)

	var sink collector[string]
	require.NoError(t, flowrt.Sink(out, sink.add))

	send.Send("a")
	send.Close()

	require.Eventually(t, func() bool { return sink.len() == 1 }, waitFor, tick)
	require.Equal(t, []string{"a:a"}, sink.snapshot())
}
