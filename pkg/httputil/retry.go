package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/observability"
)

// RetryableError marks a transient failure (transport error, 5xx or 429
// response) that [Backoff.Do] may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff spaces the attempts of [Backoff.Do]. The pause doubles after every
// failed attempt, starting at Delay and capped at MaxDelay when set.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultBackoff makes three attempts, pausing one and then two seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// wait returns the pause after failed attempt n, counting from zero.
func (b Backoff) wait(n int) time.Duration {
	d := b.Delay
	for range n {
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			break
		}
		d *= 2
	}
	if b.MaxDelay > 0 {
		d = min(d, b.MaxDelay)
	}
	return d
}

// Do calls fn until it succeeds or fails with an error not marked
// [RetryableError]; such errors are returned unchanged. name labels the
// operation in hooks and error messages.
//
// When every attempt fails the last cause is returned as a NETWORK_ERROR.
// When ctx ends during a pause the result is a TIMEOUT error wrapping
// ctx.Err().
func (b Backoff) Do(ctx context.Context, name string, fn func() error) error {
	attempts := max(b.Attempts, 1)
	var last error
	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !stderrors.As(err, &re) {
			return err
		}
		last = re.Err
		if i == attempts-1 {
			break
		}

		wait := b.wait(i)
		observability.HTTP().OnRetry(ctx, name, i+1, wait, last)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s: cancelled after %d attempts", name, i+1)
		case <-timer.C:
		}
	}
	return errors.Wrap(errors.ErrCodeNetwork, last, "%s: %d attempts failed", name, attempts)
}
