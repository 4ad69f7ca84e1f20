// Copyright 2025 Nhat-Nguyen Nguyen
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
package ratelimit

import (
	"context"
	"sync"
	"time"

	"userprofiles/modules/clock"

	"golang.org/x/time/rate"
)

var _ RateLimiter = (*TokenBucketRateLimiter)(nil)

// sweepThreshold is the number of tracked keys above which idle buckets are
// dropped on the next call.
const sweepThreshold = 10_000

// TokenBucketRateLimiter keeps one x/time/rate bucket per key in process
// memory. The bucket holds limit tokens and refills limit per window.
type TokenBucketRateLimiter struct {
	clock  clock.Clock
	limit  int64
	window time.Duration
	every  rate.Limit

	mu      sync.Mutex
	buckets map[Key]*bucket
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func TokenBucketFactory(c clock.Clock) LimiterFactory {
	return func(limit int64, window time.Duration) RateLimiter {
		return NewTokenBucket(c, limit, window)
	}
}

func NewTokenBucket(c clock.Clock, limit int64, window time.Duration) *TokenBucketRateLimiter {
	limit = max(limit, 1)
	return &TokenBucketRateLimiter{
		clock:   c,
		limit:   limit,
		window:  window,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		buckets: make(map[Key]*bucket),
	}
}

// Allow implements RateLimiter. A rejected call does not consume a token.
func (t *TokenBucketRateLimiter) Allow(_ context.Context, key Key) (Result, error) {
	now := t.clock.Now()
	lim := t.bucketFor(key, now)

	res := Result{
		Allowed: true,
		Limit:   t.limit,
		Window:  t.window,
	}

	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
		r.CancelAt(now)
		res.Allowed = false
		res.RetryAfter = delay
	}

	tokens := max(lim.TokensAt(now), 0)
	res.Remaining = int64(tokens)
	res.WindowResetIn = time.Duration((float64(t.limit) - tokens) / float64(t.every) * float64(time.Second))
	return res, nil
}

func (t *TokenBucketRateLimiter) bucketFor(key Key, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if b, ok := t.buckets[key]; ok {
		b.lastSeen = now
		return b.lim
	}

	if len(t.buckets) >= sweepThreshold {
		t.sweep(now)
	}

	b := &bucket{lim: rate.NewLimiter(t.every, int(t.limit)), lastSeen: now}
	// new buckets start full as of now, not as of the zero time
	b.lim.SetLimitAt(now, t.every)
	t.buckets[key] = b
	return b.lim
}

// sweep drops buckets idle for longer than a window; they would be full
// again anyway. Callers hold t.mu.
func (t *TokenBucketRateLimiter) sweep(now time.Time) {
	for k, b := range t.buckets {
		if now.Sub(b.lastSeen) > t.window {
			delete(t.buckets, k)
		}
	}
}

func (t *TokenBucketRateLimiter) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}
