// controller_buffers.go: picture buffer set management on the decode worker.

package hwdecpipe

import (
	"context"

	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/record"
	"github.com/xaionaro-go/hwdecpipe/surface"
	"github.com/xaionaro-go/hwdecpipe/types"
)

func (c *Controller) doAssignPictureBuffers(ctx context.Context, buffers []types.PictureBuffer) {
	logger.Debugf(ctx, "doAssignPictureBuffers(%d), state: %s", len(buffers), c.state)

	switch c.state {
	case StateError, StateDestroying:
		return
	case StateAwaitingPictureBuffers:
	default:
		c.notifyError(ctx, types.ErrorIllegalState)
		return
	}

	if len(buffers) < c.requestedPictureSet.Count {
		logger.Errorf(ctx, "client supplied %d picture buffers, need at least %d",
			len(buffers), c.requestedPictureSet.Count)
		c.notifyError(ctx, types.ErrorInvalidArgument)
		return
	}

	err := device.RetryTransient(ctx, c.Config.RetryAttempts, c.Config.RetryDelay, func(ctx context.Context) error {
		return c.Device.NegotiateOutputBuffers(ctx, len(buffers), c.requestedPictureSet.Size, c.Config.OutputFormat)
	})
	if err != nil {
		c.fatalError(ctx, err)
		return
	}

	pictureBufferIDs := make([]int32, 0, len(buffers))
	for _, buffer := range buffers {
		c.pictureBuffers[buffer.ID] = buffer
		pictureBufferIDs = append(pictureBufferIDs, buffer.ID)
	}

	c.outputPool = record.NewOutputPool(pictureBufferIDs)
	c.poolGeneration++
	c.surfaces = surface.NewArena(len(buffers))
	c.boundOutput = map[int]*surface.Surface{}

	if err := c.Device.StreamOn(ctx); err != nil {
		c.fatalError(ctx, err)
		return
	}

	c.state = StateDecoding
	c.decodePendingInput(ctx)
}

func (c *Controller) doImportBuffer(ctx context.Context, pictureBufferID int32, backing any) {
	logger.Debugf(ctx, "doImportBuffer(%d), state: %s", pictureBufferID, c.state)

	switch c.state {
	case StateError, StateDestroying:
		return
	}

	buffer, ok := c.pictureBuffers[pictureBufferID]
	if !ok {
		logger.Errorf(ctx, "import for an unknown picture buffer %d", pictureBufferID)
		c.notifyError(ctx, types.ErrorInvalidArgument)
		return
	}
	buffer.Backing = backing
	c.pictureBuffers[pictureBufferID] = buffer
}

func (c *Controller) doReusePictureBuffer(ctx context.Context, pictureBufferID int32) {
	logger.Tracef(ctx, "doReusePictureBuffer(%d), state: %s", pictureBufferID, c.state)

	switch c.state {
	case StateError, StateDestroying:
		return
	}
	if c.outputPool == nil {
		// the buffer was dismissed by a reconfiguration while the client
		// still held the picture
		logger.Debugf(ctx, "reuse of picture buffer %d after dismissal", pictureBufferID)
		return
	}

	idx := c.outputPool.IndexOfPictureBuffer(pictureBufferID)
	if idx < 0 {
		logger.Debugf(ctx, "reuse of picture buffer %d after dismissal", pictureBufferID)
		return
	}

	out := c.outputPool.Get(idx)
	if out.TimesSentToClient == 0 {
		logger.Errorf(ctx, "client returned picture buffer %d it does not hold", pictureBufferID)
		c.notifyError(ctx, types.ErrorInvalidArgument)
		return
	}

	out.TimesSentToClient--
	if out.TimesSentToClient == 0 {
		out.AtClient = false
	}

	if !out.InUse() && c.boundOutput[idx] == nil {
		mustRelease(ctx, c.outputPool.Release(idx))
		c.kickPendingInput(ctx)
	}
}
