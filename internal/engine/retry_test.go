package engine

import (
	"context"
	"errors"
	"io/fs"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient wrapper", Transient(errors.New("flaky")), true},
		{"interrupted syscall", syscall.EINTR, true},
		{"busy file", syscall.EBUSY, true},
		{"path error", &fs.PathError{Op: "open", Path: "/tmp/x", Err: errors.New("io")}, true},
		{"missing file", &fs.PathError{Op: "open", Path: "/tmp/x", Err: fs.ErrNotExist}, false},
		{"regular error", errors.New("something"), false},
		{"nil-safe transient", Transient(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryDoSuccess(t *testing.T) {
	rc := RetryConfig{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond, Multiplier: 2}
	calls := 0
	got, err := RetryDo(context.Background(), rc, func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("RetryDo error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls, want ok after 1", got, calls)
	}
}

func TestRetryDoEventualSuccess(t *testing.T) {
	rc := RetryConfig{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond, Multiplier: 2}
	calls := 0
	got, err := RetryDo(context.Background(), rc, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, Transient(errors.New("not yet"))
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("RetryDo error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestRetryDoNonRetryableStops(t *testing.T) {
	rc := RetryConfig{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond, Multiplier: 2}
	calls := 0
	permanent := errors.New("bad input")
	_, err := RetryDo(context.Background(), rc, func() (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 for non-retryable error", calls)
	}
}

func TestRetryDoExhausted(t *testing.T) {
	rc := RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
	calls := 0
	flaky := errors.New("still flaky")
	_, err := RetryDo(context.Background(), rc, func() (int, error) {
		calls++
		return 0, Transient(flaky)
	})
	if !errors.Is(err, flaky) {
		t.Fatalf("err = %v, want underlying %v", err, flaky)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want MaxRetries+1 = 3", calls)
	}
}

func TestRetryDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RetryDo(ctx, DefaultRetryConfig, func() (int, error) {
		t.Fatal("fn ran despite cancelled context")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTransientUnwrap(t *testing.T) {
	inner := errors.New("inner")
	if !errors.Is(Transient(inner), inner) {
		t.Error("Transient lost the wrapped error")
	}
}
