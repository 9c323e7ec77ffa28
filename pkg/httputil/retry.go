package httputil

import (
	"context"
	"errors"
	"time"
)

// Backoff is a bounded exponential retry policy. Only errors marked with
// [Transient] are retried.
type Backoff struct {
	Attempts int           // total calls, at least 1
	Initial  time.Duration // wait before the second call
	Max      time.Duration // cap on a single wait; 0 means uncapped
}

// DefaultBackoff makes three calls, waiting 1s then 2s.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second, Max: 8 * time.Second}

// fetchBackoff is the policy [Fetch] uses.
var fetchBackoff = DefaultBackoff

// Do calls fn until it succeeds, returns a permanent error, or the attempts
// are used up. A cancelled ctx ends the wait early and returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	var last error
	for i := 0; i < max(b.Attempts, 1); i++ {
		if i > 0 {
			t := time.NewTimer(b.wait(i))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		last = fn()
		if last == nil || !IsTransient(last) {
			return last
		}
	}
	return last
}

// wait returns the delay before call n (n >= 1).
func (b Backoff) wait(n int) time.Duration {
	d := b.Initial << (n - 1)
	if b.Max > 0 && (d > b.Max || d <= 0) {
		return b.Max
	}
	return d
}

type transientError struct{ cause error }

func (e transientError) Error() string { return e.cause.Error() }
func (e transientError) Unwrap() error { return e.cause }

// Transient marks err as worth retrying. Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{cause: err}
}

// IsTransient reports whether err, or anything it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}
