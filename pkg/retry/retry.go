// Package retry provides exponential backoff for transient startup failures.
// The generation pipeline deliberately does not use it: a provider failure
// there falls back to a template instead of retrying.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Config defines backoff behavior.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64
}

// DefaultConfig suits database dialing at startup: 3 retries starting at
// 100ms, doubling, capped at 5s, with 10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

func (c *Config) jittered(delay time.Duration) time.Duration {
	if c.JitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * c.JitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

func (c *Config) next(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * c.Multiplier)
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// Do runs fn until it succeeds or the retries are exhausted, returning the
// last error. Context cancellation aborts the wait between attempts.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for functions that return a value, such as opening a
// connection pool.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}

		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-time.After(cfg.jittered(delay)):
			delay = cfg.next(delay)
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	return result, lastErr
}
