package retry

import (
	"context"
	"math"
	"time"

	"github.com/rclifen122/Office-Document-Translator/pkg/providers"
)

// Config controls the retry policy.
type Config struct {
	// MaxRetries is the number of attempts after the first failure.
	MaxRetries int `json:"max_retries"`

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration `json:"initial_delay"`

	// MaxDelay caps the backoff.
	MaxDelay time.Duration `json:"max_delay"`

	// BackoffFactor multiplies the delay per retry.
	BackoffFactor float64 `json:"backoff_factor"`
}

// DefaultConfig returns the default retry policy.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Retrier retries an operation on transient failures with exponential
// backoff. Permanent failures abort immediately.
type Retrier struct {
	config Config
}

// New creates a Retrier.
func New(config Config) *Retrier {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.BackoffFactor <= 1.0 {
		config.BackoffFactor = 2.0
	}
	return &Retrier{config: config}
}

// Operation is one attempt of the retried work.
type Operation func(ctx context.Context, attempt int) error

// Do runs fn until it succeeds, a permanent error occurs, the retry budget
// is exhausted, or ctx is canceled. The attempt index passed to fn is
// 1-based. The last error is returned on failure.
func (r *Retrier) Do(ctx context.Context, fn Operation) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxRetries+1; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !Retryable(err) || attempt > r.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.Delay(attempt)):
		}
	}

	return lastErr
}

// Delay returns the backoff before the retry following the given attempt
// (1-based).
func (r *Retrier) Delay(attempt int) time.Duration {
	delay := r.config.InitialDelay
	if attempt > 1 {
		multiplier := math.Pow(r.config.BackoffFactor, float64(attempt-1))
		delay = time.Duration(float64(delay) * multiplier)
	}
	if r.config.MaxDelay > 0 && delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	return delay
}

// Retryable reports whether the error is worth retrying. A count-mismatch
// or malformed model reply is retryable even though the network call
// succeeded; classification of those lives with the provider errors.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if err == context.Canceled {
		return false
	}
	return providers.IsTransient(err)
}
