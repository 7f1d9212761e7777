package retrier

import (
	"context"
	"time"
)

const (
	defaultInterval    = 1 * time.Second
	defaultMaxAttempts = 3
)

// Retrier runs an operation up to a fixed number of attempts with a
// constant delay between them. A predicate decides which errors are
// worth another attempt; everything else aborts the loop immediately.
type Retrier struct {
	interval    time.Duration
	maxAttempts int
	retryIf     func(error) bool
}

// Option defines a function to configure the Retrier.
type Option func(*Retrier)

// WithInterval sets the delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.interval = d
	}
}

// WithMaxAttempts sets the total number of attempts, including the first.
func WithMaxAttempts(n int) Option {
	return func(r *Retrier) {
		if n < 1 {
			n = 1
		}
		r.maxAttempts = n
	}
}

// WithRetryIf sets the predicate deciding whether an error is retryable.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) {
		r.retryIf = fn
	}
}

// New creates a new Retrier with default values and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		interval:    defaultInterval,
		maxAttempts: defaultMaxAttempts,
		retryIf:     func(error) bool { return true },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Do executes fn until it succeeds, returns a non-retryable error, or
// attempts run out. The last error is returned in the latter cases.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !r.retryIf(err) {
			return err
		}
		if attempt == r.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}

	return err
}

// DoWithData executes fn with retries and returns its value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
