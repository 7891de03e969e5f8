// client.go defines the notification surface towards the display client.

package hwdecpipe

import (
	"context"

	"github.com/xaionaro-go/hwdecpipe/types"
)

// Client receives the pipeline's notifications. All calls are made from the
// client notifier context, never from the decode worker, so a slow client
// cannot stall decoding (except through the documented clearing round-trip).
type Client interface {
	// PictureReady delivers one decoded picture, always in submission order.
	// The client returns the buffer via Controller.ReusePictureBuffer.
	PictureReady(ctx context.Context, picture types.Picture)

	// ProvidePictureBuffers asks the client to allocate a new picture buffer
	// set and hand it back via Controller.AssignPictureBuffers.
	ProvidePictureBuffers(ctx context.Context, count int, format types.PixelFormat, size types.Size)

	// DismissPictureBuffer revokes a previously assigned buffer; the client
	// must not return it afterwards.
	DismissPictureBuffer(ctx context.Context, pictureBufferID int32)

	NotifyError(ctx context.Context, err types.Error)
	NotifyFlushDone(ctx context.Context)
	NotifyResetDone(ctx context.Context)
}
