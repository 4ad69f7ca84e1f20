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
	"fmt"
	"sync"
)

// Worker handles one job. A returned error is collected by the pool and does
// not stop the other workers.
type Worker[Job any] func(context.Context, Job) error

// PanicError is what a panicking job is reported as.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panic: %v", e.Value)
}

// BlockingPool spawns size workers that drain jobs and blocks until all of them
// return. It returns every job error joined, plus ctx.Err() when the context
// was cancelled before the channel was drained.
//
// The caller must ensure that jobs eventually gets closed or the context gets
// cancelled.
//
// A pool caps concurrency against a shared resource such as a database pool.
// For a handful of latency critical tasks spawning goroutines directly is
// simpler.
func BlockingPool[Job any](ctx context.Context, size int, jobs <-chan Job, worker Worker[Job]) error {
	if size <= 0 {
		size = 1
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	collect := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for range size {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					if err := run(ctx, worker, job); err != nil {
						collect(err)
					}
				}
			}
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// run keeps a panicking job from taking the worker down, wg.Go requires that
// its func does not panic.
func run[Job any](ctx context.Context, worker Worker[Job], job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return worker(ctx, job)
}
