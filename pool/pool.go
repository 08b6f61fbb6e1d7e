// Package pool wraps an ants worker pool with futures. Submitted work runs
// on at most size recycled workers, spawned on demand, for the lifetime of
// the pool.
package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// ErrInvalidSize is returned when a pool is created with fewer than one
// worker.
var ErrInvalidSize = errors.New("pool size must be at least 1")

// ErrClosed is reported by futures submitted after Close.
var ErrClosed = errors.New("pool closed")

// Pool runs submitted functions on a fixed number of workers.
type Pool struct {
	size    int
	workers *ants.Pool

	pending sync.WaitGroup
	closed  atomic.Bool
}

// New creates a Pool with size workers.
func New(size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	workers, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("start pool of %d: %w", size, err)
	}

	return &Pool{size: size, workers: workers}, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit queues fn and returns a Future for its result. Submit blocks while
// every worker is busy.
func (p *Pool) Submit(fn func() error) *Future {
	f := newFuture()

	p.pending.Add(1)

	err := p.workers.Submit(func() {
		defer p.pending.Done()
		f.complete(fn())
	})
	if err != nil {
		p.pending.Done()

		if errors.Is(err, ants.ErrPoolClosed) {
			err = ErrClosed
		}

		f.complete(err)
	}

	return f
}

// Close waits until every submitted function has run, then releases the
// workers. It is safe to call more than once.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	p.pending.Wait()
	p.workers.Release()
}

// Map submits fn for every item in order and waits for all of them. It
// returns the error of the earliest item that failed.
func Map[T any](p *Pool, items []T, fn func(T) error) error {
	futures := make([]*Future, 0, len(items))

	for _, item := range items {
		futures = append(futures, p.Submit(func() error {
			return fn(item)
		}))
	}

	return Wait(futures)
}
