package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRecover_ConvertsPanicToError(t *testing.T) {
	fn := Recover[int, int]()(func(ctx context.Context, in int) (int, error) {
		panic("bad input")
	})

	_, err := fn(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}

	var recErr *RecoveryError
	if !errors.As(err, &recErr) {
		t.Fatalf("expected *RecoveryError, got %T", err)
	}
	if recErr.PanicValue != "bad input" {
		t.Errorf("panic value = %v, want %q", recErr.PanicValue, "bad input")
	}
	if !strings.Contains(recErr.StackTrace, "goroutine") {
		t.Error("expected stack trace to be captured")
	}
	if !strings.Contains(recErr.Error(), "panic recovered") {
		t.Errorf("unexpected error message: %s", recErr.Error())
	}
}

func TestRecover_PassesThroughNormalResults(t *testing.T) {
	wantErr := errors.New("regular failure")
	fn := Recover[int, int]()(func(ctx context.Context, in int) (int, error) {
		if in < 0 {
			return 0, wantErr
		}
		return in + 1, nil
	})

	out, err := fn(context.Background(), 1)
	if err != nil || out != 2 {
		t.Errorf("got (%d, %v), want (2, nil)", out, err)
	}

	_, err = fn(context.Background(), -1)
	if !errors.Is(err, wantErr) {
		t.Errorf("regular errors must pass through unchanged, got %v", err)
	}
}
