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
	"fmt"
	"math/bits"
	"time"

	"userprofiles/modules/clock"
)

var _ RateLimiter = (*SlidingWindowRateLimiter)(nil)

// SlidingWindowRateLimiter approximates a sliding window with two adjacent
// fixed windows. The previous window's count is weighted by how much of it
// still overlaps the sliding window ending now.
type SlidingWindowRateLimiter struct {
	clock     clock.Clock
	counter   CounterStore
	keyPrefix string

	limit  uint64
	window time.Duration
}

func SlidingWindowFactory(c clock.Clock, counter CounterStore, keyPrefix string) LimiterFactory {
	return func(limit int64, window time.Duration) RateLimiter {
		return &SlidingWindowRateLimiter{
			clock:     c,
			counter:   counter,
			keyPrefix: keyPrefix,
			limit:     uint64(max(limit, 0)),
			window:    window,
		}
	}
}

// Allow implements RateLimiter. Every call is counted, rejected ones included.
func (s *SlidingWindowRateLimiter) Allow(ctx context.Context, key Key) (Result, error) {
	nowNs := s.clock.Now().UnixNano()
	windowNs := s.window.Nanoseconds()
	idx := nowNs / windowNs

	cur, err := s.counter.Incr(ctx, s.buildKey(key, idx), s.window*2)
	if err != nil {
		return Result{}, err
	}
	prev, err := s.counter.Get(ctx, s.buildKey(key, idx-1))
	if err != nil {
		return Result{}, err
	}

	elapsed := min(max(nowNs-idx*windowNs, 0), windowNs)
	resetIn := max(s.window-time.Duration(elapsed), 0)

	u := weightedUsage(uint64(max(cur, 0)), uint64(max(prev, 0)), uint64(windowNs), uint64(windowNs-elapsed))
	allowed := u.within(s.limit, uint64(windowNs))

	used := u.ceilDiv(uint64(windowNs))
	remaining := uint64(0)
	if used < s.limit {
		remaining = s.limit - used
	}

	res := Result{
		Allowed:       allowed,
		Remaining:     int64(remaining),
		Limit:         int64(s.limit),
		Window:        s.window,
		WindowResetIn: resetIn,
	}
	if !allowed {
		res.RetryAfter = resetIn
	}
	return res, nil
}

func (s *SlidingWindowRateLimiter) buildKey(key Key, windowIdx int64) string {
	return fmt.Sprintf("%s:%s:%d", s.keyPrefix, key, windowIdx)
}

// usage is cur*window + prev*prevWeight as a 128-bit integer, in request
// nanoseconds. Keeping it integral avoids float rounding making two
// consecutive requests report the same remaining count.
type usage struct {
	hi, lo uint64
}

func weightedUsage(cur, prev, windowNs, prevWeightNs uint64) usage {
	curHi, curLo := bits.Mul64(cur, windowNs)
	prevHi, prevLo := bits.Mul64(prev, prevWeightNs)
	lo, carry := bits.Add64(curLo, prevLo, 0)
	hi, _ := bits.Add64(curHi, prevHi, carry)
	return usage{hi: hi, lo: lo}
}

// within reports usage <= limit*window.
func (u usage) within(limit, windowNs uint64) bool {
	hi, lo := bits.Mul64(limit, windowNs)
	return u.hi < hi || (u.hi == hi && u.lo <= lo)
}

// ceilDiv returns ceil(usage / windowNs), saturating at MaxUint64.
func (u usage) ceilDiv(windowNs uint64) uint64 {
	if u.hi == 0 {
		return (u.lo + windowNs - 1) / windowNs
	}
	if u.hi >= windowNs {
		return ^uint64(0)
	}
	q, r := bits.Div64(u.hi, u.lo, windowNs)
	if r != 0 && q != ^uint64(0) {
		q++
	}
	return q
}
