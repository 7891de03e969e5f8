// Package accelerator defines the capability surface between the pipeline
// and the per-codec delegate. The delegate owns all bitstream semantics
// (header parsing, reference management, device command parameters); the
// pipeline owns buffers, ordering and lifetimes. The two meet over the
// SurfaceHandler/Accelerator pair below and nowhere else.
package accelerator

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/hwdecpipe/surface"
	"github.com/xaionaro-go/hwdecpipe/types"
)

// SurfaceHandler is the pipeline-side surface the codec delegate drives.
// All three calls must be made from within Accelerator.Decode/Flush, i.e.
// on the decode worker.
type SurfaceHandler interface {
	// CreateSurface binds a free input record and a free output record into
	// a new surface. The second return value is false when no surface is
	// available right now; the delegate should surface that as
	// DecodeResultTryAgainLater, not as an error.
	CreateSurface(ctx context.Context) (*surface.Surface, bool)

	// Enqueue submits a fully prepared surface to the device.
	Enqueue(ctx context.Context, s *surface.Surface) error

	// OutputPicture queues a surface for display in submission order.
	OutputPicture(ctx context.Context, s *surface.Surface) error
}

// DecodeResult is the non-error outcome of feeding one coded buffer to the
// delegate.
type DecodeResult int

const (
	// DecodeResultDone: the input was fully consumed.
	DecodeResultDone = DecodeResult(0x0)

	// DecodeResultTryAgainLater: no free surface; the pipeline re-feeds the
	// same input once a surface frees up. Backpressure, not an error.
	DecodeResultTryAgainLater = DecodeResult(0x1)

	// DecodeResultNewBuffersRequested: the stream requires a different
	// picture buffer set (count/size); the pipeline must reconfigure
	// before this input can be consumed.
	DecodeResultNewBuffersRequested = DecodeResult(0x2)
)

func (r DecodeResult) String() string {
	switch r {
	case DecodeResultDone:
		return "done"
	case DecodeResultTryAgainLater:
		return "try-again-later"
	case DecodeResultNewBuffersRequested:
		return "new-buffers-requested"
	default:
		return "DecodeResult(" + fmt.Sprintf("%d", int(r)) + ")"
	}
}

// PictureSetRequest describes the output buffer set the delegate needs.
type PictureSetRequest struct {
	Count int
	Size  types.Size
}

func (r PictureSetRequest) String() string {
	return fmt.Sprintf("picture-set(count:%d size:%s)", r.Count, r.Size)
}

// Accelerator is the codec-specific delegate. Implementations are no
// concern of the pipeline beyond this interface; it never inspects the
// codec.
//
// All methods are invoked on the decode worker.
type Accelerator interface {
	fmt.Stringer

	// SetSurfaceHandler wires the delegate to the pipeline. Called once,
	// before any Decode.
	SetSurfaceHandler(h SurfaceHandler)

	// Decode consumes one coded buffer, creating/submitting surfaces
	// through the SurfaceHandler as needed.
	Decode(ctx context.Context, bitstream types.BitstreamBuffer) (DecodeResult, error)

	// Flush forces emission (OutputPicture) of every internally buffered
	// surface.
	Flush(ctx context.Context) error

	// Reset drops all internal prediction state, releasing the references
	// the delegate holds on its reference surfaces.
	Reset(ctx context.Context) error

	// PictureSetRequest is valid after Decode returned
	// DecodeResultNewBuffersRequested.
	PictureSetRequest() PictureSetRequest
}
