// controller_client_calls.go: the surface exposed to the client. Every call
// hands off to the decode worker immediately; the client never blocks on
// decoding.

package hwdecpipe

import (
	"context"
	"time"

	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/types"
)

// Decode submits one coded frame.
func (c *Controller) Decode(ctx context.Context, bitstream types.BitstreamBuffer) {
	logger.Tracef(ctx, "Decode(%s)", bitstream)
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.doDecode(ctx, bitstream)
	}})
}

// Flush forces every buffered frame out; NotifyFlushDone arrives exactly
// once, after the last picture.
func (c *Controller) Flush(ctx context.Context) {
	logger.Debugf(ctx, "Flush")
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.doFlush(ctx)
	}})
}

// Reset discards all pending input and prediction state. Buffer pools
// survive; NotifyResetDone arrives exactly once, after all in-flight work
// drained.
func (c *Controller) Reset(ctx context.Context) {
	logger.Debugf(ctx, "Reset")
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.doReset(ctx)
	}})
}

// AssignPictureBuffers answers ProvidePictureBuffers.
func (c *Controller) AssignPictureBuffers(ctx context.Context, buffers []types.PictureBuffer) {
	logger.Debugf(ctx, "AssignPictureBuffers(%d)", len(buffers))
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.doAssignPictureBuffers(ctx, buffers)
	}})
}

// ImportBuffer attaches an externally allocated backing to an assigned
// picture buffer.
func (c *Controller) ImportBuffer(ctx context.Context, pictureBufferID int32, backing any) {
	logger.Debugf(ctx, "ImportBuffer(%d)", pictureBufferID)
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.doImportBuffer(ctx, pictureBufferID, backing)
	}})
}

// ReusePictureBuffer returns a displayed picture buffer to the pipeline.
func (c *Controller) ReusePictureBuffer(ctx context.Context, pictureBufferID int32) {
	logger.Tracef(ctx, "ReusePictureBuffer(%d)", pictureBufferID)
	c.post(ctx, task{fn: func(ctx context.Context) {
		c.doReusePictureBuffer(ctx, pictureBufferID)
	}})
}

// Destroy tears the pipeline down and waits for the decode worker to stop.
// The destroy flag is checked at the start of every worker step and polled
// inside every bounded wait, so this cannot hang on work that will never
// complete.
func (c *Controller) Destroy(ctx context.Context) {
	logger.Debugf(ctx, "Destroy")
	defer func() { logger.Debugf(ctx, "/Destroy") }()

	c.destroyed.Store(true)
	c.Device.Interrupt()

	if !c.workerStarted {
		if c.cancelWorker != nil {
			c.cancelWorker()
		}
		c.ClosureSignaler.Close(ctx)
		return
	}

	c.post(ctx, task{isDestroy: true, fn: func(ctx context.Context) {
		c.doDestroy(ctx)
	}})

	// keep nudging the device: a poller stuck in a wait that will never
	// complete otherwise must notice the teardown
	t := time.NewTicker(c.Config.DestroyPollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.workerDone:
			return
		case <-t.C:
			c.Device.Interrupt()
		}
	}
}

func (c *Controller) doDestroy(ctx context.Context) {
	logger.Debugf(ctx, "doDestroy")
	defer func() { logger.Debugf(ctx, "/doDestroy") }()

	c.state = StateDestroying
	if err := c.Device.StreamOff(ctx); err != nil {
		logger.Errorf(ctx, "unable to stop the device stream: %v", err)
	}
	if err := c.Device.Close(ctx); err != nil {
		logger.Errorf(ctx, "unable to close the device: %v", err)
	}
	c.cancelWorker()
	c.ClosureSignaler.Close(ctx)
}

// GetState reports the controller state as seen by the decode worker. The
// call round-trips through the task queue, so it also acts as a barrier for
// all previously posted calls.
func (c *Controller) GetState(ctx context.Context) State {
	resultCh := make(chan State, 1)
	c.post(ctx, task{fn: func(ctx context.Context) {
		resultCh <- c.state
	}})
	select {
	case <-ctx.Done():
		return StateDestroying
	case <-c.workerDone:
		return StateDestroying
	case state := <-resultCh:
		return state
	}
}
