// Copyright 2025 kenvexar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package retry provides bounded exponential backoff for operations that
// can fail transiently. The retry policy is an explicit value consumed by
// a generic Do function, so the algorithm is testable independently of
// any specific operation.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// ErrInvalidMaxAttempts is returned when a policy allows zero attempts.
var ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt; it doubles on
	// each subsequent attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// Jitter adds up to ±25% random variation to each delay so
	// concurrent retries do not thunder in lockstep.
	Jitter bool

	// Retryable reports whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
}

// DefaultPolicy returns the retry policy used for enrichment calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	}
}

// Do runs op until it succeeds, exhausts the policy's attempts, hits a
// non-retryable error, or the context is cancelled. The error from the
// last attempt is returned on exhaustion.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if policy.MaxAttempts <= 0 {
		return zero, ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return result, nil
		}
		lastErr = err

		if policy.Retryable != nil && !policy.Retryable(err) {
			return zero, err
		}

		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.delay(attempt)
		slog.Debug("operation failed, will retry",
			"attempt", attempt,
			"maxAttempts", policy.MaxAttempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// delay computes the backoff before attempt+1: BaseDelay * 2^(attempt-1),
// capped at MaxDelay, with optional jitter.
func (p Policy) delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.Jitter && delay > 0 {
		jitter := time.Duration(rand.Int63n(int64(delay)/2+1)) - delay/4
		delay += jitter
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}
