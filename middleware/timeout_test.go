package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeout_CancelsSlowProcessing(t *testing.T) {
	fn := Timeout[int, int](10 * time.Millisecond)(func(ctx context.Context, in int) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return in, nil
		}
	})

	_, err := fn(context.Background(), 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestTimeout_FastProcessingUnaffected(t *testing.T) {
	fn := Timeout[int, int](time.Second)(func(ctx context.Context, in int) (int, error) {
		return in * 2, nil
	})

	out, err := fn(context.Background(), 3)
	if err != nil || out != 6 {
		t.Errorf("got (%d, %v), want (6, nil)", out, err)
	}
}

func TestTimeout_ZeroDisablesDeadline(t *testing.T) {
	fn := Timeout[int, int](0)(func(ctx context.Context, in int) (int, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("expected no deadline on context")
		}
		return in, nil
	})

	if _, err := fn(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
