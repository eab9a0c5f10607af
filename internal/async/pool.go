// Package async runs service operations on a bounded worker pool and
// hands callers a Future immediately. A task that has started always runs
// to completion; abandoning the Future does not cancel it.
package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPanicRecovered is returned by a Future whose task panicked.
var ErrPanicRecovered = errors.New("async: panic recovered")

const defaultWorkers = 8

// Pool bounds the number of concurrently executing tasks.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPool creates a pool allowing up to size concurrent tasks.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = defaultWorkers
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() { p.wg.Wait() }

// Future is the asynchronous result of one task.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Wait blocks until the task finishes or ctx is done. The task itself
// keeps running when ctx expires first; only the wait is abandoned.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Run submits fn to the pool and returns its Future. Panics inside fn are
// recovered and surfaced as ErrPanicRecovered.
func Run[T any](p *Pool, ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(f.done)
		defer func() {
			if recovered := recover(); recovered != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanicRecovered, recovered)
			}
		}()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()
		f.val, f.err = fn(ctx)
	}()
	return f
}
