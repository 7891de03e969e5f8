// controller_dequeue.go: completion handling, re-entered from the device
// poller.

package hwdecpipe

import (
	"context"

	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/logger"
)

// doDequeue retires one completed request. The surface is looked up by
// output record index, never by FIFO position: completion order is the
// device's business.
func (c *Controller) doDequeue(ctx context.Context, completion device.Completion) {
	logger.Tracef(ctx, "doDequeue(%s), state: %s", completion, c.state)

	switch c.state {
	case StateError, StateDestroying, StateUninitialized:
		return
	}

	s := c.inFlight[completion.OutputIndex]
	if s == nil {
		// a completion that raced StreamOff; the buffers already came home
		logger.Debugf(ctx, "no in-flight surface for %s", completion)
		return
	}
	assert(ctx, s.InputIndex == completion.InputIndex,
		"completion does not match the surface bound to its output record", completion, s)
	delete(c.inFlight, completion.OutputIndex)

	// input records return to the free pool immediately; output records wait
	// for display and reference use to complete
	in := c.inputPool.Get(s.InputIndex)
	in.AtDevice = false
	mustRelease(ctx, c.inputPool.Release(s.InputIndex))

	out := c.outputPool.Get(s.OutputIndex)
	out.AtDevice = false

	s.SetDecoded(ctx)
	c.Stats.FramesDecoded.Inc()
	s.Unref(ctx)

	c.drainDisplayQueue(ctx)
	c.kickPendingInput(ctx)
	c.maybeProcessPendingEvents(ctx)
}
