// controller_events.go: flush, reset and surface-set-change sequencing.
// All internal events are parked until the device drains, then run in a
// fixed priority order.

package hwdecpipe

import (
	"context"

	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/surface"
	"github.com/xaionaro-go/hwdecpipe/types"
)

func (c *Controller) doFlush(ctx context.Context) {
	logger.Debugf(ctx, "doFlush, state: %s", c.state)

	switch c.state {
	case StateError, StateDestroying, StateUninitialized:
		return
	case StateInitialized:
		c.state = StateDecoding
	}

	c.pendingInput = append(c.pendingInput, pendingInput{IsFlushSentinel: true})
	c.decodePendingInput(ctx)
}

func (c *Controller) doReset(ctx context.Context) {
	logger.Debugf(ctx, "doReset, state: %s", c.state)

	switch c.state {
	case StateError, StateDestroying, StateUninitialized:
		return
	}

	// discard pending input; a queued flush completes as part of the reset
	// so its NotifyFlushDone is never lost
	for _, pending := range c.pendingInput {
		if pending.IsFlushSentinel {
			c.pendingFlush = true
		}
	}
	c.pendingInput = nil

	if err := c.Accelerator.Reset(ctx); err != nil {
		c.fatalError(ctx, err)
		return
	}

	c.pendingReset = true
	if c.state == StateDecoding || c.state == StateInitialized {
		c.state = StateIdle
	}
	c.maybeProcessPendingEvents(ctx)
}

// maybeProcessPendingEvents is the Idle synchronization point. It refuses
// to act while any surface is still at the device; once drained, events run
// in a fixed priority order: surface-set change → flush → reset → resume.
// The order is load-bearing: a surface-set change discards exactly the
// state flush/reset rely on, so it must never interleave with them.
func (c *Controller) maybeProcessPendingEvents(ctx context.Context) {
	if c.state != StateIdle && c.state != StateAwaitingPictureBuffers {
		return
	}
	if len(c.inFlight) > 0 {
		logger.Tracef(ctx, "still %d surfaces in flight, staying in %s", len(c.inFlight), c.state)
		return
	}

	if c.pendingSurfaceSetChange && c.state == StateIdle {
		c.pendingSurfaceSetChange = false
		c.doChangeSurfaceSet(ctx)
		// fallthrough: flush/reset may still complete while awaiting buffers
	}

	if c.pendingFlush {
		c.pendingFlush = false
		c.finishFlush(ctx)
		if c.state == StateError {
			return
		}
	}

	if c.pendingReset {
		c.pendingReset = false
		c.finishReset(ctx)
		if c.state == StateError {
			return
		}
	}

	if c.state == StateIdle {
		c.state = StateDecoding
		c.decodePendingInput(ctx)
	}
}

func (c *Controller) finishFlush(ctx context.Context) {
	logger.Debugf(ctx, "finishFlush")
	defer func() { logger.Debugf(ctx, "/finishFlush") }()

	// nothing is in flight, so everything queued for display is decoded
	c.drainDisplayQueue(ctx)
	assert(ctx, len(c.displayQueue) == 0, "the display queue must drain before flush completes")
	c.dispatcher.ForceFlush(ctx)

	c.Stats.FlushesCompleted.Inc()
	c.dispatcher.PostToClient(ctx, func(ctx context.Context) {
		c.Client.NotifyFlushDone(ctx)
	})
}

func (c *Controller) finishReset(ctx context.Context) {
	logger.Debugf(ctx, "finishReset")
	defer func() { logger.Debugf(ctx, "/finishReset") }()

	c.drainDisplayQueue(ctx)
	c.dispatcher.ForceFlush(ctx)

	// the reset is non-destructive: the pools survive, and with nothing in
	// flight every input record must be home again
	assert(ctx, c.inputPool.FreeCount() == c.inputPool.Len(),
		"all input records must be free after a reset",
		c.inputPool.FreeCount(), c.inputPool.Len())

	c.Stats.ResetsCompleted.Inc()
	c.dispatcher.PostToClient(ctx, func(ctx context.Context) {
		c.Client.NotifyResetDone(ctx)
	})
}

// doChangeSurfaceSet tears down the output buffer set. Only reachable with
// an empty in-flight map; ends in AwaitingPictureBuffers until the client
// assigns a new set.
func (c *Controller) doChangeSurfaceSet(ctx context.Context) {
	logger.Debugf(ctx, "doChangeSurfaceSet(%s)", c.requestedPictureSet)
	defer func() { logger.Debugf(ctx, "/doChangeSurfaceSet") }()

	assert(ctx, len(c.inFlight) == 0, "surface-set change with surfaces in flight")

	c.drainDisplayQueue(ctx)
	c.dispatcher.ForceFlush(ctx)

	if err := c.Device.StreamOff(ctx); err != nil {
		c.fatalError(ctx, err)
		return
	}

	assert(ctx, c.surfaces == nil || c.surfaces.LiveCount() == 0,
		"surfaces from the old set must be gone before reallocation")

	for pictureBufferID := range c.pictureBuffers {
		pictureBufferID := pictureBufferID
		c.dispatcher.PostToClient(ctx, func(ctx context.Context) {
			c.Client.DismissPictureBuffer(ctx, pictureBufferID)
		})
	}
	c.pictureBuffers = map[int32]types.PictureBuffer{}
	c.outputPool = nil
	c.surfaces = nil
	c.boundOutput = map[int]*surface.Surface{}

	c.state = StateAwaitingPictureBuffers
	request := c.requestedPictureSet
	c.dispatcher.PostToClient(ctx, func(ctx context.Context) {
		c.Client.ProvidePictureBuffers(ctx, request.Count, c.Config.OutputFormat, request.Size)
	})
}
