// Package retry runs remote operations with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultInitialInterval is the wait before the first retry.
	DefaultInitialInterval = time.Second

	// DefaultMultiplier doubles the wait on every attempt.
	DefaultMultiplier = 2.0

	// DefaultMaxElapsedTime bounds the total time spent retrying one call.
	DefaultMaxElapsedTime = 10 * time.Second
)

// Policy describes when and how long to retry a failed operation.
type Policy struct {
	// InitialInterval is the wait before the first retry.
	InitialInterval time.Duration

	// Multiplier scales the wait after every retry.
	Multiplier float64

	// MaxInterval caps a single wait. Zero means MaxElapsedTime.
	MaxInterval time.Duration

	// MaxElapsedTime bounds the total time spent retrying. Once the next wait
	// would exceed it, the last error is returned.
	MaxElapsedTime time.Duration

	// Retryable reports whether err is transient. A nil Retryable retries
	// every error.
	Retryable func(err error) bool

	// Notify is called before each wait with the operation name, the error
	// that triggered the retry and the wait duration. Optional.
	Notify func(op string, err error, next time.Duration)
}

// DefaultPolicy returns a Policy with a 1s initial wait doubling up to a 10s
// total bound.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: DefaultInitialInterval,
		Multiplier:      DefaultMultiplier,
		MaxElapsedTime:  DefaultMaxElapsedTime,
	}
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialInterval,
		RandomizationFactor: 0,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxInterval,
	}
	if b.InitialInterval <= 0 {
		b.InitialInterval = DefaultInitialInterval
	}
	if b.Multiplier < 1 {
		b.Multiplier = DefaultMultiplier
	}
	if b.MaxInterval <= 0 {
		b.MaxInterval = p.maxElapsed()
	}
	return b
}

func (p Policy) maxElapsed() time.Duration {
	if p.MaxElapsedTime <= 0 {
		return DefaultMaxElapsedTime
	}
	return p.MaxElapsedTime
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy's
// elapsed-time bound is reached. Non-retryable errors are returned on the
// first attempt without waiting.
func Do[T any](ctx context.Context, op string, p Policy, fn func(context.Context) (T, error)) (T, error) {
	operation := func() (T, error) {
		res, err := fn(ctx)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxElapsedTime(p.maxElapsed()),
	}
	if p.Notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, next time.Duration) {
			p.Notify(op, err, next)
		}))
	}

	return backoff.Retry(ctx, operation, opts...)
}
