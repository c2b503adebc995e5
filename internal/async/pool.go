// Package async runs invoke handlers off the UI thread on a bounded pool.
package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Spawn after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool bounds the number of concurrently running tasks. Spawn never blocks
// the caller; tasks wait for a slot on their own goroutine.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup

	// mu orders wg.Add against Close so Add never races a Wait that
	// follows Close.
	mu     sync.Mutex
	closed bool

	logger  *slog.Logger
	running atomic.Int64
}

func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(workers)),
		logger: logger,
	}
}

// Spawn schedules fn. If ctx is cancelled before a slot frees up, fn never
// runs. A panic in fn is logged and swallowed.
func (p *Pool) Spawn(ctx context.Context, fn func(context.Context)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	p.mu.Unlock()
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			p.logger.Debug("task dropped before start", "error", err)
			return
		}
		defer p.sem.Release(1)

		p.running.Add(1)
		defer p.running.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("task panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			}
		}()
		fn(ctx)
	}()
	return nil
}

// Running returns the number of tasks currently executing.
func (p *Pool) Running() int64 { return p.running.Load() }

// Close stops accepting new tasks.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Wait blocks until every spawned task has returned.
func (p *Pool) Wait() { p.wg.Wait() }
