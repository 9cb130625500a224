package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// retryClass says how often an error may be retried within one Generate.
type retryClass int

const (
	retryNever retryClass = iota
	retryOnce             // a malformed answer may be a fluke; a second one is not
	retryAlways
)

func classify(err error) retryClass {
	var (
		trunc *ErrMaxTokensExceeded
		auth  *ErrUnauthorized
		inv   *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &trunc), errors.As(err, &auth):
		return retryNever
	case errors.As(err, &inv):
		return retryOnce
	default:
		return retryAlways
	}
}

// RetryProvider retries failed calls with capped exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p. MaxAttempts below one still makes a single call.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	retriedMalformed := false

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if retriedMalformed {
				return nil, err
			}
			retriedMalformed = true
		}
		if attempt >= attempts {
			return nil, err
		}

		t := time.NewTimer(r.wait(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// wait returns the pause before retry number attempt (1-based). A
// provider's Retry-After wins; otherwise InitialWait grows by Multiplier
// up to MaxWait, with up to 20% jitter either way.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	d := float64(r.config.InitialWait)
	for range attempt - 1 {
		d *= r.config.Multiplier
	}
	if limit := float64(r.config.MaxWait); limit > 0 && d > limit {
		d = limit
	}
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
