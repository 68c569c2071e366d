// Package pool provides a bounded worker pool with futures and a failure breaker.
package pool

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/klauspost/cpuid/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// SequentialEnv forces a single worker when set to "1".
const SequentialEnv = "KILN_SEQUENTIAL"

// DefaultSize returns twice the number of logical CPUs, or 1 when SequentialEnv is set.
func DefaultSize() int {
	if os.Getenv(SequentialEnv) == "1" {
		return 1
	}
	n := cpuid.CPU.LogicalCores
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return 2 * n
}

// Pool bounds how many submitted tasks run at once. Excess submissions queue.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// New creates a pool running at most size tasks at once. A size of zero or less uses DefaultSize.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize()
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Size returns the number of concurrent workers.
func (p *Pool) Size() int {
	return p.size
}

// Future is the handle of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit schedules fn on the pool and returns immediately.
func Submit[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := p.sem.Acquire(ctx, 1); err != nil {
			f.err = err
			return
		}
		defer p.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				f.err = zerr.New(fmt.Sprintf("task panicked: %v", r))
			}
		}()

		f.value, f.err = fn(ctx)
	}()

	return f
}

// Done is closed when the task has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task finishes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// WaitTimeout is Wait bounded by d. On timeout it returns an error wrapping
// domain.ErrTaskTimeout; the task itself keeps running and its result is dropped.
// A d of zero or less waits without a deadline.
func (f *Future[T]) WaitTimeout(ctx context.Context, d time.Duration) (T, error) {
	if d <= 0 {
		return f.Wait(ctx)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		var zero T
		return zero, zerr.With(zerr.Wrap(domain.ErrTaskTimeout, "gave up waiting"), "timeout", d.String())
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
