// controller_worker.go: the decode worker is a single-consumer task loop;
// every client call, device completion and clearing ack re-enters the
// controller as a task on this loop.

package hwdecpipe

import (
	"context"

	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/types"
)

func (c *Controller) serveWorker(ctx context.Context) {
	logger.Debugf(ctx, "serveWorker")
	defer func() { logger.Debugf(ctx, "/serveWorker") }()
	defer close(c.workerDone)

	for {
		t, ok := c.tasks.Pop(ctx)
		if !ok {
			return
		}
		// the destroy flag gates every re-entrant step
		if c.destroyed.Load() && !t.isDestroy {
			logger.Debugf(ctx, "skipping a task: the pipeline is being destroyed")
			continue
		}
		t.fn(ctx)
		if c.state == StateDestroying {
			return
		}
	}
}

// post hands a task to the decode worker. It never blocks: the queue is
// unbounded, which keeps the three execution contexts free of queue-capacity
// deadlocks between each other.
func (c *Controller) post(ctx context.Context, t task) {
	c.tasks.Push(ctx, t)
}

// postFromDispatcher is how the clearing round-trip re-enters the worker.
func (c *Controller) postFromDispatcher(ctx context.Context, fn func(ctx context.Context)) {
	c.post(ctx, task{fn: fn})
}

func (c *Controller) onDeviceCompletion(ctx context.Context, completion device.Completion) {
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.doDequeue(ctx, completion)
	}})
}

func (c *Controller) onPollerError(ctx context.Context, err error) {
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.fatalError(ctx, err)
	}})
}

// fatalError moves the controller to the terminal Error state. The client
// hears about it exactly once; everything after is a no-op.
func (c *Controller) fatalError(ctx context.Context, err error) {
	if c.state == StateError {
		logger.Debugf(ctx, "already in the error state, swallowing: %v", err)
		return
	}
	logger.Errorf(ctx, "fatal platform failure: %v", err)
	c.state = StateError
	c.notifyError(ctx, types.ErrorPlatformFailure)
}

// notifyError reports a non-state-changing error (e.g. an invalid argument)
// to the client.
func (c *Controller) notifyError(ctx context.Context, code types.Error) {
	logger.Errorf(ctx, "reporting to the client: %v", code)
	c.dispatcher.PostToClient(ctx, func(ctx context.Context) {
		c.Client.NotifyError(ctx, code)
	})
}
