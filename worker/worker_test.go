// Copyright 2025 Nguyen Nhat Nguyen
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

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func feed(n int) <-chan int {
	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)
	return jobs
}

func TestBlockingPool_RunsEveryJob(t *testing.T) {
	var sum atomic.Int64
	err := BlockingPool(context.Background(), 4, feed(100), func(_ context.Context, i int) error {
		sum.Add(int64(i))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sum.Load(); got != 4950 {
		t.Fatalf("sum = %d, want 4950", got)
	}
}

func TestBlockingPool_CollectsErrors(t *testing.T) {
	odd := errors.New("odd job")
	var done atomic.Int64

	err := BlockingPool(context.Background(), 3, feed(10), func(_ context.Context, i int) error {
		done.Add(1)
		if i%2 == 1 {
			return odd
		}
		return nil
	})
	if !errors.Is(err, odd) {
		t.Fatalf("error = %v, want %v", err, odd)
	}
	if joined, ok := err.(interface{ Unwrap() []error }); !ok || len(joined.Unwrap()) != 5 {
		t.Fatalf("want 5 joined errors, got %v", err)
	}
	if done.Load() != 10 {
		t.Fatalf("a failing job must not stop the pool, ran %d jobs", done.Load())
	}
}

func TestBlockingPool_PanicBecomesError(t *testing.T) {
	err := BlockingPool(context.Background(), 2, feed(3), func(_ context.Context, i int) error {
		if i == 1 {
			panic("boom")
		}
		return nil
	})
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "boom" {
		t.Fatalf("error = %v, want a PanicError", err)
	}
}

func TestBlockingPool_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	jobs := make(chan int) // never closed

	go func() {
		jobs <- 1
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		done <- BlockingPool(ctx, 2, jobs, func(context.Context, int) error { return nil })
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not return after cancellation")
	}
}

func TestBlockingPool_ZeroSizeStillRuns(t *testing.T) {
	var n atomic.Int64
	_ = BlockingPool(context.Background(), 0, feed(5), func(context.Context, int) error {
		n.Add(1)
		return nil
	})
	if n.Load() != 5 {
		t.Fatalf("ran %d jobs, want 5", n.Load())
	}
}
