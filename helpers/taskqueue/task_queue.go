// Package taskqueue provides an unbounded single-consumer task queue: the
// backbone of each execution context in the pipeline. Producers never block,
// which keeps the decode worker, the device poller and the client notifier
// free of lock-order cycles between their queues.
package taskqueue

import (
	"context"

	"github.com/xaionaro-go/xsync"
)

type Queue[T any] struct {
	locker   xsync.Mutex
	items    []T
	notifyCh chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		notifyCh: make(chan struct{}, 1),
	}
}

// Push appends an item. It never blocks.
func (q *Queue[T]) Push(ctx context.Context, item T) {
	q.locker.Do(ctx, func() {
		q.items = append(q.items, item)
	})
	select {
	case q.notifyCh <- struct{}{}:
	default:
	}
}

// Pop removes and returns the front item, blocking until one is available.
// The second return value is false when ctx died first.
func (q *Queue[T]) Pop(ctx context.Context) (T, bool) {
	for {
		item, ok := xsync.DoR2(ctx, &q.locker, func() (T, bool) {
			var zeroValue T
			if len(q.items) == 0 {
				return zeroValue, false
			}
			item := q.items[0]
			q.items = q.items[1:]
			return item, true
		})
		if ok {
			return item, true
		}

		select {
		case <-ctx.Done():
			var zeroValue T
			return zeroValue, false
		case <-q.notifyCh:
		}
	}
}

func (q *Queue[T]) Len(ctx context.Context) int {
	return xsync.DoR1(ctx, &q.locker, func() int {
		return len(q.items)
	})
}
