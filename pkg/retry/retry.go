package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrCancelled is matched (errors.Is) when a retry sequence stops because its
// context was cancelled. It is never returned for an ordinary exhausted sequence.
var ErrCancelled = errors.New("retry cancelled")

// CancelledError reports a sequence aborted by its context.
// Last holds the most recent operation failure, if any.
type CancelledError struct {
	Attempts int
	Cause    error
	Last     error
}

func (e *CancelledError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("retry cancelled after %d attempt(s): %v (last error: %v)", e.Attempts, e.Cause, e.Last)
	}
	return fmt.Sprintf("retry cancelled after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

// Sleeper blocks for d or until ctx is done, returning ctx.Err() in the latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryFunc is notified before each backoff sleep. attempt is the 1-based
// number of the call that just failed.
type RetryFunc func(attempt int, delay time.Duration, err error)

// Retrier executes operations under a Policy.
type Retrier struct {
	policy  Policy
	sleep   Sleeper
	rand    func() float64
	onRetry RetryFunc
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithSleeper replaces the sleeping strategy (tests use a recording no-op).
func WithSleeper(s Sleeper) Option {
	return func(r *Retrier) {
		if s != nil {
			r.sleep = s
		}
	}
}

// WithRand replaces the jitter source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(r *Retrier) {
		if fn != nil {
			r.rand = fn
		}
	}
}

// WithOnRetry registers a hook called before every backoff.
func WithOnRetry(fn RetryFunc) Option {
	return func(r *Retrier) {
		r.onRetry = fn
	}
}

// New creates a Retrier. The policy is used as given; call Normalize first
// if it comes from untrusted configuration.
func New(p Policy, opts ...Option) *Retrier {
	r := &Retrier{
		policy: p,
		sleep:  SleepContext,
		rand:   rand.Float64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the policy the retrier applies.
func (r *Retrier) Policy() Policy { return r.policy }

// Do calls fn until it succeeds or the policy is exhausted.
//
// On exhaustion the last error from fn is returned unchanged. The context is
// checked before every attempt and before and during every sleep; when it is
// done Do returns a *CancelledError instead of the operation failure.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := r.policy.Attempts()
	var last error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return &CancelledError{Attempts: attempt, Cause: err, Last: last}
		}

		last = fn(ctx)
		if last == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		delay := r.policy.Delay(attempt, r.rand())
		if r.onRetry != nil {
			r.onRetry(attempt+1, delay, last)
		}
		if err := ctx.Err(); err != nil {
			return &CancelledError{Attempts: attempt + 1, Cause: err, Last: last}
		}
		if err := r.sleep(ctx, delay); err != nil {
			return &CancelledError{Attempts: attempt + 1, Cause: err, Last: last}
		}
	}
	return last
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Do runs fn under p with the default sleeper and jitter source.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	return New(p).Do(ctx, fn)
}
