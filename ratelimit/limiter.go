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


// Package ratelimit enforces the dual request budget shared across all
// enrichment calls: a short per-minute window and a long per-day window.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the result of an acquisition attempt. When Allowed is
// false, RetryAfter is the earliest delay after which a retry could
// succeed (the later of the two buckets' refill times). Waiting is the
// caller's responsibility; Acquire itself never blocks.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// DualLimiter implements two independent token buckets, one per minute
// and one per day. A call is permitted only when both buckets have
// capacity, and a grant consumes one token from each.
//
// The limiter is the single shared mutable resource across all concurrent
// pipeline invocations; all state mutation happens under one mutex so
// concurrent callers cannot jointly exceed either limit.
type DualLimiter struct {
	mu     sync.Mutex
	minute *rate.Limiter
	day    *rate.Limiter
}

// NewDualLimiter creates a limiter granting at most perMinute requests
// in any rolling minute and perDay requests in any rolling day.
// Non-positive values disable the corresponding bucket.
func NewDualLimiter(perMinute, perDay int) *DualLimiter {
	l := &DualLimiter{}
	if perMinute > 0 {
		l.minute = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	if perDay > 0 {
		l.day = rate.NewLimiter(rate.Every(24*time.Hour/time.Duration(perDay)), perDay)
	}
	return l
}

// Acquire attempts to take one token from both buckets. It returns
// immediately with a Decision and never waits.
func (l *DualLimiter) Acquire() Decision {
	return l.acquireAt(time.Now())
}

func (l *DualLimiter) acquireAt(now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	var reservations []*rate.Reservation
	var retryAfter time.Duration

	for _, lim := range []*rate.Limiter{l.minute, l.day} {
		if lim == nil {
			continue
		}
		r := lim.ReserveN(now, 1)
		reservations = append(reservations, r)
		if d := r.DelayFrom(now); d > retryAfter {
			retryAfter = d
		}
	}

	if retryAfter > 0 {
		// One of the buckets is empty; hand all tokens back so a denied
		// attempt consumes no budget.
		for _, r := range reservations {
			r.CancelAt(now)
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}

	return Decision{Allowed: true}
}
