// Package surface implements decode surfaces: the unit of work submitted to
// the decode device. A surface binds one input record, one output record,
// zero or more reference surfaces and a one-shot decode-done callback.
//
// Ownership is reference-counted through an explicit Arena (see arena.go)
// so that the "longest holder wins" lifetime rule stays auditable. All
// surface mutation happens on the decode worker.
package surface

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/types"
)

// DoneFunc is invoked exactly once, when the surface transitions to decoded.
type DoneFunc func(ctx context.Context)

// Surface is a handle into an Arena slot. Copies of the same *Surface share
// the slot; each co-owner must hold its own reference (see Ref/Unref).
type Surface struct {
	arena *Arena
	index int

	InputIndex  int
	OutputIndex int
	BitstreamID int32

	// Frame is an optional externally-owned frame object (e.g. an imported
	// GPU image) riding along with the surface; the pipeline never touches it.
	Frame any

	// Submitted is set by the pipeline when the surface goes to the device.
	// A surface that dies unsubmitted still owns its input record.
	Submitted bool

	referenceSurfaces    []*Surface
	referenceSurfacesSet bool
	decoded              bool
	doneFn               DoneFunc
	releaseFn            ReleaseFunc

	visibleRect types.Rect
	colorSpace  types.ColorSpace
}

func (s *Surface) String() string {
	return fmt.Sprintf("surface(#%d in:%d out:%d bitstream:%d decoded:%v)",
		s.index, s.InputIndex, s.OutputIndex, s.BitstreamID, s.decoded)
}

// Index is the arena slot of this surface; stable for the surface's lifetime.
func (s *Surface) Index() int {
	return s.index
}

func (s *Surface) Decoded() bool {
	return s.decoded
}

// Ref adds one owner. The creator starts with one reference.
func (s *Surface) Ref(ctx context.Context) {
	s.arena.ref(ctx, s.index)
}

// Unref drops one owner. When the last owner drops, the arena invokes the
// release callback and recycles the slot.
func (s *Surface) Unref(ctx context.Context) {
	s.arena.unref(ctx, s.index)
}

// SetReferenceSurfaces attaches the prediction references of this surface.
// May be called at most once, before submission. Each reference is held
// (reference-counted) until SetDecoded.
func (s *Surface) SetReferenceSurfaces(ctx context.Context, refs []*Surface) {
	assert(ctx, !s.referenceSurfacesSet, "reference surfaces were already set", s)
	assert(ctx, !s.decoded, "cannot set reference surfaces on a decoded surface", s)
	s.referenceSurfacesSet = true
	s.referenceSurfaces = refs
	for _, ref := range refs {
		ref.Ref(ctx)
	}
}

// SetDecodeDoneCallback installs the one-shot callback fired by SetDecoded.
func (s *Surface) SetDecodeDoneCallback(ctx context.Context, fn DoneFunc) {
	assert(ctx, s.doneFn == nil, "decode-done callback was already set", s)
	assert(ctx, !s.decoded, "cannot set a decode-done callback on a decoded surface", s)
	s.doneFn = fn
}

// SetVisibleRect may be called once, before the surface is decoded.
func (s *Surface) SetVisibleRect(ctx context.Context, r types.Rect) {
	assert(ctx, !s.decoded, "metadata is immutable after decode", s)
	s.visibleRect = r
}

func (s *Surface) VisibleRect() types.Rect {
	return s.visibleRect
}

// SetColorSpace may be called once, before the surface is decoded.
func (s *Surface) SetColorSpace(ctx context.Context, cs types.ColorSpace) {
	assert(ctx, !s.decoded, "metadata is immutable after decode", s)
	s.colorSpace = cs
}

func (s *Surface) ColorSpace() types.ColorSpace {
	return s.colorSpace
}

// SetDecoded marks the surface decoded, drops the references it holds on its
// prediction references and fires the decode-done callback. Idempotency is a
// contract violation: calling it twice panics.
func (s *Surface) SetDecoded(ctx context.Context) {
	logger.Tracef(ctx, "SetDecoded: %s", s)
	assert(ctx, !s.decoded, "SetDecoded was called twice", s)
	s.decoded = true

	refs := s.referenceSurfaces
	s.referenceSurfaces = nil
	for _, ref := range refs {
		ref.Unref(ctx)
	}

	if fn := s.doneFn; fn != nil {
		s.doneFn = nil
		fn(ctx)
	}
}
