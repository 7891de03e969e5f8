// dummy.go provides a codec-less Accelerator used by tests and benchmarks:
// one coded buffer in, one surface out, no actual bitstream semantics.

package accelerator

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/hwdecpipe/surface"
	"github.com/xaionaro-go/hwdecpipe/types"
)

// Dummy is a scriptable Accelerator. Its zero value decodes nothing:
// set Request before use.
type Dummy struct {
	Handler SurfaceHandler

	// Request is the picture buffer set asked for on the first Decode.
	Request PictureSetRequest

	// ReconfigureAtFrame, when non-zero, requests NextRequest once that
	// many frames have been decoded (a mid-stream resolution change).
	ReconfigureAtFrame int
	NextRequest        PictureSetRequest

	// HoldUntilFlush keeps decoded surfaces internal until Flush, like a
	// codec with display-order reordering.
	HoldUntilFlush bool

	// ReferencePrevious makes every frame predict from the previous one.
	ReferencePrevious bool

	VisibleRect types.Rect
	ColorSpace  types.ColorSpace

	requested         bool
	reconfigRequested bool
	frameCounter      int
	pendingRequest    PictureSetRequest
	held              []*surface.Surface
	previous          *surface.Surface
}

var _ Accelerator = (*Dummy)(nil)

func (d *Dummy) String() string {
	return "DummyAccelerator"
}

func (d *Dummy) SetSurfaceHandler(h SurfaceHandler) {
	d.Handler = h
}

func (d *Dummy) PictureSetRequest() PictureSetRequest {
	return d.pendingRequest
}

func (d *Dummy) Decode(ctx context.Context, bitstream types.BitstreamBuffer) (DecodeResult, error) {
	if !d.requested {
		d.requested = true
		d.pendingRequest = d.Request
		return DecodeResultNewBuffersRequested, nil
	}
	if d.ReconfigureAtFrame != 0 && d.frameCounter == d.ReconfigureAtFrame && !d.reconfigRequested {
		d.reconfigRequested = true
		// no prediction across a surface-set change
		d.dropReferences(ctx)
		d.pendingRequest = d.NextRequest
		return DecodeResultNewBuffersRequested, nil
	}

	s, ok := d.Handler.CreateSurface(ctx)
	if !ok {
		return DecodeResultTryAgainLater, nil
	}

	if d.ReferencePrevious && d.previous != nil {
		s.SetReferenceSurfaces(ctx, []*surface.Surface{d.previous})
	}
	if !d.VisibleRect.IsEmpty() {
		s.SetVisibleRect(ctx, d.VisibleRect)
	}
	if d.ColorSpace.IsSpecified() {
		s.SetColorSpace(ctx, d.ColorSpace)
	}

	if err := d.Handler.Enqueue(ctx, s); err != nil {
		s.Unref(ctx)
		return DecodeResultDone, fmt.Errorf("unable to submit %s: %w", s, err)
	}

	if d.ReferencePrevious {
		if d.previous != nil {
			d.previous.Unref(ctx)
		}
		s.Ref(ctx)
		d.previous = s
	}

	d.frameCounter++
	if d.HoldUntilFlush {
		d.held = append(d.held, s)
		return DecodeResultDone, nil
	}

	if err := d.Handler.OutputPicture(ctx, s); err != nil {
		s.Unref(ctx)
		return DecodeResultDone, fmt.Errorf("unable to output %s: %w", s, err)
	}
	s.Unref(ctx)
	return DecodeResultDone, nil
}

func (d *Dummy) Flush(ctx context.Context) error {
	for _, s := range d.held {
		if err := d.Handler.OutputPicture(ctx, s); err != nil {
			return fmt.Errorf("unable to output %s: %w", s, err)
		}
		s.Unref(ctx)
	}
	d.held = nil
	return nil
}

func (d *Dummy) Reset(ctx context.Context) error {
	for _, s := range d.held {
		s.Unref(ctx)
	}
	d.held = nil
	d.dropReferences(ctx)
	return nil
}

func (d *Dummy) dropReferences(ctx context.Context) {
	if d.previous != nil {
		d.previous.Unref(ctx)
		d.previous = nil
	}
}
