// SPDX-License-Identifier: MIT

package player

import "sync"

// dispatchQueue serializes all registry and session state mutation onto a
// single goroutine, the process equivalent of the platform UI queue.
// Registration racing UI teardown is the classic dangling-handle bug in this
// kind of client; funnelling every mutation through one loop removes the
// race without per-field locking.
//
// The queue is unbounded so the loop itself may safely Dispatch follow-up
// work without deadlocking.
type dispatchQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	done    chan struct{}
}

func newDispatchQueue() *dispatchQueue {
	q := &dispatchQueue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *dispatchQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		fn()
	}
}

// Dispatch enqueues fn asynchronously. Safe to call from the loop itself.
func (q *dispatchQueue) Dispatch(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
	q.cond.Signal()
}

// Sync runs fn on the loop and waits for it. Must not be called from the
// loop itself.
func (q *dispatchQueue) Sync(fn func()) {
	doneCh := make(chan struct{})
	q.Dispatch(func() {
		defer close(doneCh)
		fn()
	})
	select {
	case <-doneCh:
	case <-q.done:
	}
}

// Close drains remaining work and stops the loop.
func (q *dispatchQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Signal()
	<-q.done
}
