package autotabber

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/himanishpuri/AutoTabber/internal/audio"
)

// frameQueue hands frames from the producer to the consumer in FIFO order.
type frameQueue interface {
	push(ctx context.Context, f audio.Frame) error
	// pop returns false once the queue is closed and drained.
	pop(ctx context.Context) (audio.Frame, bool, error)
	close()
	dropped() int64
}

func newFrameQueue(policy OverflowPolicy, size int) frameQueue {
	if policy == OverflowUnbounded {
		return &listQueue{ready: make(chan struct{}, 1)}
	}
	return &chanQueue{ch: make(chan audio.Frame, size), drop: policy == OverflowDrop}
}

type chanQueue struct {
	ch    chan audio.Frame
	drop  bool
	drops atomic.Int64
}

func (q *chanQueue) push(ctx context.Context, f audio.Frame) error {
	if q.drop {
		select {
		case q.ch <- f:
		default:
			q.drops.Add(1)
		}
		return nil
	}
	select {
	case q.ch <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *chanQueue) pop(ctx context.Context) (audio.Frame, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	select {
	case f, ok := <-q.ch:
		return f, ok, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (q *chanQueue) close()         { close(q.ch) }
func (q *chanQueue) dropped() int64 { return q.drops.Load() }

type listQueue struct {
	mu     sync.Mutex
	items  []audio.Frame
	closed bool
	ready  chan struct{}
}

func (q *listQueue) push(_ context.Context, f audio.Frame) error {
	q.mu.Lock()
	q.items = append(q.items, f)
	q.mu.Unlock()
	q.notify()
	return nil
}

func (q *listQueue) notify() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *listQueue) pop(ctx context.Context) (audio.Frame, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		q.mu.Lock()
		if len(q.items) > 0 {
			f := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return f, true, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false, nil
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

func (q *listQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
}

func (q *listQueue) dropped() int64 { return 0 }
