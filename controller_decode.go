// controller_decode.go: the decode path. Everything here runs on the decode
// worker.

package hwdecpipe

import (
	"context"

	"github.com/xaionaro-go/hwdecpipe/accelerator"
	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/surface"
	"github.com/xaionaro-go/hwdecpipe/types"
)

func (c *Controller) doDecode(ctx context.Context, bitstream types.BitstreamBuffer) {
	logger.Tracef(ctx, "doDecode(%s), state: %s", bitstream, c.state)

	switch c.state {
	case StateError, StateDestroying:
		return
	case StateUninitialized:
		logger.Errorf(ctx, "Decode() before Initialize()")
		return
	case StateInitialized:
		c.state = StateDecoding
	}

	if len(bitstream.Data) == 0 || len(bitstream.Data) > c.Config.InputBufferCapacity {
		c.notifyError(ctx, types.ErrorInvalidArgument)
		return
	}

	c.pendingInput = append(c.pendingInput, pendingInput{Bitstream: bitstream})
	c.decodePendingInput(ctx)
}

// decodePendingInput feeds the pending input queue to the codec delegate
// until it runs dry, backpressure stops it, or an internal event parks the
// controller in Idle.
func (c *Controller) decodePendingInput(ctx context.Context) {
	for c.state == StateDecoding && len(c.pendingInput) > 0 {
		front := c.pendingInput[0]

		if front.IsFlushSentinel {
			c.pendingInput = c.pendingInput[1:]
			if err := c.Accelerator.Flush(ctx); err != nil {
				c.fatalError(ctx, err)
				return
			}
			c.pendingFlush = true
			c.state = StateIdle
			break
		}

		bitstream := front.Bitstream
		c.currentBitstream = &bitstream
		result, err := c.Accelerator.Decode(ctx, bitstream)
		c.currentBitstream = nil
		if err != nil {
			c.fatalError(ctx, err)
			return
		}
		logger.Tracef(ctx, "decoded %s: %s", bitstream, result)

		switch result {
		case accelerator.DecodeResultDone:
			c.pendingInput = c.pendingInput[1:]
			c.Stats.BytesConsumed.Add(uint64(len(bitstream.Data)))
		case accelerator.DecodeResultTryAgainLater:
			// no free surface; a release re-enters this loop
			return
		case accelerator.DecodeResultNewBuffersRequested:
			// the input stays queued and is re-fed once the new buffer
			// set is in place
			c.requestedPictureSet = c.Accelerator.PictureSetRequest()
			c.pendingSurfaceSetChange = true
			c.state = StateIdle
		default:
			assert(ctx, false, "unknown decode result", result)
		}
	}

	c.maybeProcessPendingEvents(ctx)
}

// kickPendingInput re-enters the decode loop after a resource was freed.
func (c *Controller) kickPendingInput(ctx context.Context) {
	if c.state != StateDecoding {
		return
	}
	c.decodePendingInput(ctx)
}

// CreateSurface implements accelerator.SurfaceHandler: it binds a free
// input record and a free output record, populating the input buffer from
// the coded frame currently being decoded.
func (c *Controller) CreateSurface(ctx context.Context) (*surface.Surface, bool) {
	if c.outputPool == nil || c.surfaces == nil {
		return nil, false
	}

	inputIndex, ok := c.inputPool.Acquire()
	if !ok {
		return nil, false
	}
	outputIndex, ok := c.outputPool.Acquire()
	if !ok {
		mustRelease(ctx, c.inputPool.Release(inputIndex))
		return nil, false
	}

	bitstream := c.currentBitstream
	assert(ctx, bitstream != nil, "CreateSurface outside of a Decode call")

	s, ok := c.surfaces.Create(ctx, inputIndex, outputIndex, bitstream.ID, c.onSurfaceReleased)
	if !ok {
		mustRelease(ctx, c.inputPool.Release(inputIndex))
		mustRelease(ctx, c.outputPool.Release(outputIndex))
		return nil, false
	}

	in := c.inputPool.Get(inputIndex)
	in.BytesUsed = copy(in.Data, bitstream.Data)

	c.boundOutput[outputIndex] = s
	return s, true
}

// Enqueue implements accelerator.SurfaceHandler: it submits a prepared
// surface to the device and records it in the in-flight map. The map is
// keyed by output record index, not submission order: the device may
// complete requests out of order.
func (c *Controller) Enqueue(ctx context.Context, s *surface.Surface) error {
	logger.Tracef(ctx, "Enqueue(%s)", s)

	in := c.inputPool.Get(s.InputIndex)
	out := c.outputPool.Get(s.OutputIndex)
	in.AtDevice = true
	out.AtDevice = true

	err := c.Device.Submit(ctx, device.Request{
		InputIndex:  s.InputIndex,
		OutputIndex: s.OutputIndex,
		BytesUsed:   in.BytesUsed,
	})
	if err != nil {
		in.AtDevice = false
		out.AtDevice = false
		c.fatalError(ctx, err)
		return err
	}

	assert(ctx, c.inFlight[s.OutputIndex] == nil, "output record is already in flight", s.OutputIndex)
	s.Ref(ctx)
	s.Submitted = true
	c.inFlight[s.OutputIndex] = s
	c.Stats.FramesSubmitted.Inc()
	return nil
}

// OutputPicture implements accelerator.SurfaceHandler: it queues a surface
// for display. Pictures leave this queue in submission order only.
func (c *Controller) OutputPicture(ctx context.Context, s *surface.Surface) error {
	logger.Tracef(ctx, "OutputPicture(%s)", s)
	s.Ref(ctx)
	c.displayQueue = append(c.displayQueue, displayQueueEntry{
		BitstreamID: s.BitstreamID,
		Surface:     s,
	})
	c.drainDisplayQueue(ctx)
	return nil
}

// onSurfaceReleased fires when the last owner of a surface drops it. The
// output record goes back to the free list unless the display path still
// references it; an unsubmitted surface also still owns its input record.
func (c *Controller) onSurfaceReleased(ctx context.Context, s *surface.Surface) {
	logger.Tracef(ctx, "onSurfaceReleased(%s)", s)
	delete(c.boundOutput, s.OutputIndex)

	if !s.Submitted {
		mustRelease(ctx, c.inputPool.Release(s.InputIndex))
	}

	if c.outputPool == nil {
		return
	}
	out := c.outputPool.Get(s.OutputIndex)
	if !out.InUse() {
		mustRelease(ctx, c.outputPool.Release(s.OutputIndex))
	}

	c.kickPendingInput(ctx)
}

// drainDisplayQueue pops decoded entries off the front of the display queue
// and hands them to the picture dispatcher. The queue is strictly FIFO:
// a decoded frame behind an undecoded one waits.
func (c *Controller) drainDisplayQueue(ctx context.Context) {
	for len(c.displayQueue) > 0 {
		e := c.displayQueue[0]
		if !e.Surface.Decoded() {
			break
		}
		c.displayQueue = c.displayQueue[1:]
		c.sendPicture(ctx, e)
	}
}

func (c *Controller) sendPicture(ctx context.Context, e displayQueueEntry) {
	out := c.outputPool.Get(e.Surface.OutputIndex)
	picture := types.Picture{
		BufferID:    out.PictureBufferID,
		BitstreamID: e.BitstreamID,
		VisibleRect: e.Surface.VisibleRect(),
		ColorSpace:  e.Surface.ColorSpace(),
	}
	out.TimesSentToClient++
	out.AtClient = true
	c.Stats.PicturesSent.Inc()

	c.dispatcher.Dispatch(ctx, picture, e.Surface.OutputIndex, c.poolGeneration, out.Cleared)
	e.Surface.Unref(ctx)
}

// onPictureCleared runs on the decode worker when the one-time clearing
// round-trip for an output record completed. An ack carrying a stale pool
// generation raced a reconfiguration: the record it was meant for is gone
// and the same index in the new pool must not inherit the ack.
func (c *Controller) onPictureCleared(ctx context.Context, outputIndex int, generation uint64) {
	if generation != c.poolGeneration {
		logger.Debugf(ctx, "dropping a clearing ack for output record %d: buffer set generation %d is gone (current: %d)",
			outputIndex, generation, c.poolGeneration)
		return
	}
	if c.outputPool == nil || outputIndex >= c.outputPool.Len() {
		return
	}
	c.outputPool.Get(outputIndex).Cleared = true
}

func mustRelease(ctx context.Context, err error) {
	assert(ctx, err == nil, "record release must not fail", err)
}
