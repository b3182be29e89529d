package repository

import (
	"context"
	"sync"
)

// mutation is one unit of work for the writer goroutine.
type mutation struct {
	name  string
	apply func(ctx context.Context) error
	ctx   context.Context
	done  chan error // buffered, size 1
}

// mutationQueue is a thread-safe unbounded FIFO of pending mutations.
//
// The signal channel (buffered, size 1) coalesces wakeups so the writer can
// wait on it alongside ctx.Done().
type mutationQueue struct {
	mu      sync.Mutex
	pending []*mutation
	closed  bool
	signal  chan struct{}
}

func newMutationQueue() *mutationQueue {
	return &mutationQueue{
		pending: make([]*mutation, 0, 8),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds a mutation to the back of the queue.
// Returns false if the queue is closed.
func (q *mutationQueue) Enqueue(m *mutation) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.pending = append(q.pending, m)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front mutation without blocking.
func (q *mutationQueue) TryDequeue() (*mutation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, false
	}

	m := q.pending[0]
	q.pending[0] = nil // release for GC
	if len(q.pending) == 1 {
		q.pending = q.pending[:0]
	} else {
		q.pending = q.pending[1:]
	}
	return m, true
}

// Wait returns a channel that fires when mutations may be available.
// It is closed once the queue is closed.
func (q *mutationQueue) Wait() <-chan struct{} {
	return q.signal
}

// Drained reports whether the queue is closed and empty.
func (q *mutationQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.pending) == 0
}

// Close stops accepting mutations and wakes the writer.
func (q *mutationQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
