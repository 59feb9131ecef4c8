package overlord

import (
	"context"
	"sync"
)

// update is one attribute change waiting for delivery.
type update struct {
	name  string
	value any
}

// queue is an unbounded FIFO of updates. Push never blocks, so it can be
// called from attribute watchers while the store is locked.
type queue struct {
	items  []update
	closed bool
	ready  chan struct{}
	mu     sync.Mutex
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

// Push appends an update. Updates pushed after Close are dropped.
func (q *queue) Push(u update) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.items = append(q.items, u)

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop waits for the next update. It returns false once the queue is closed
// and drained, or when ctx is done.
func (q *queue) Pop(ctx context.Context) (update, bool) {
	for {
		q.mu.Lock()

		if len(q.items) > 0 {
			u := q.items[0]
			q.items[0] = update{}
			q.items = q.items[1:]
			q.mu.Unlock()

			return u, true
		}

		if q.closed {
			q.mu.Unlock()

			return update{}, false
		}

		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return update{}, false
		case <-q.ready:
		}
	}
}

// Close stops accepting updates and wakes a waiting Pop.
func (q *queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true

	select {
	case q.ready <- struct{}{}:
	default:
	}
}
