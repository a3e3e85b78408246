package httputil

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/observability"
)

var errTransient = stderrors.New("transient")

type retryRecorder struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	attempts []int
	waits    []time.Duration
}

func (r *retryRecorder) OnRetry(_ context.Context, _ string, attempt int, wait time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	r.waits = append(r.waits, wait)
}

func TestBackoffDo(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := b.Do(ctx, "agenda", func() error {
		calls++
		if calls < 2 {
			return &RetryableError{Err: errTransient}
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	calls = 0
	plain := errors.New(errors.ErrCodeNotFound, "gone")
	err = b.Do(ctx, "agenda", func() error {
		calls++
		return plain
	})
	if err != plain || calls != 1 {
		t.Errorf("non-retryable error: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = b.Do(ctx, "agenda", func() error {
		calls++
		return &RetryableError{Err: errTransient}
	})
	if !errors.Is(err, errors.ErrCodeNetwork) || !stderrors.Is(err, errTransient) || calls != 3 {
		t.Errorf("exhausted retries: err=%v calls=%d", err, calls)
	}
}

func TestBackoffCancelDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := Backoff{Attempts: 3, Delay: time.Hour}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- b.Do(ctx, "votes", func() error {
			calls++
			return &RetryableError{Err: errTransient}
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, errors.ErrCodeTimeout) {
			t.Errorf("err = %v, want code %s", err, errors.ErrCodeTimeout)
		}
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want it to wrap context.Canceled", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	case <-time.After(time.Second):
		t.Fatal("Do kept waiting after cancellation")
	}
}

func TestBackoffReportsRetries(t *testing.T) {
	rec := &retryRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	b := Backoff{Attempts: 3, Delay: time.Millisecond}
	_ = b.Do(context.Background(), "votes", func() error {
		return &RetryableError{Err: errTransient}
	})

	if len(rec.attempts) != 2 || rec.attempts[0] != 1 || rec.attempts[1] != 2 {
		t.Errorf("reported attempts = %v, want [1 2]", rec.attempts)
	}
	if len(rec.waits) != 2 || rec.waits[0] != time.Millisecond || rec.waits[1] != 2*time.Millisecond {
		t.Errorf("reported waits = %v, want [1ms 2ms]", rec.waits)
	}
}

func TestBackoffWait(t *testing.T) {
	tests := []struct {
		name string
		b    Backoff
		n    int
		want time.Duration
	}{
		{"first pause", Backoff{Delay: time.Second}, 0, time.Second},
		{"doubles", Backoff{Delay: time.Second}, 3, 8 * time.Second},
		{"capped", Backoff{Delay: time.Second, MaxDelay: 5 * time.Second}, 3, 5 * time.Second},
		{"cap below delay", Backoff{Delay: time.Second, MaxDelay: time.Millisecond}, 0, time.Millisecond},
		{"default", DefaultBackoff, 1, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.wait(tt.n); got != tt.want {
				t.Errorf("wait(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}
