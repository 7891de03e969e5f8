package surface

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/hwdecpipe/types"
)

func TestArenaBackpressure(t *testing.T) {
	ctx := context.Background()
	a := NewArena(1)

	s, ok := a.Create(ctx, 0, 0, 1, nil)
	require.True(t, ok)

	_, ok = a.Create(ctx, 1, 1, 2, nil)
	require.False(t, ok, "an exhausted arena signals backpressure")

	s.Unref(ctx)
	_, ok = a.Create(ctx, 1, 1, 2, nil)
	require.True(t, ok, "releasing the surface frees the slot")
}

func TestReleaseCallbackFiresOnLastUnref(t *testing.T) {
	ctx := context.Background()
	a := NewArena(2)

	released := 0
	s, ok := a.Create(ctx, 3, 5, 7, func(ctx context.Context, s *Surface) {
		released++
		require.Equal(t, 3, s.InputIndex)
		require.Equal(t, 5, s.OutputIndex)
	})
	require.True(t, ok)

	s.Ref(ctx)
	s.Unref(ctx)
	require.Equal(t, 0, released)
	s.Unref(ctx)
	require.Equal(t, 1, released)
	require.Equal(t, 2, a.FreeCount())
}

func TestSetDecodedFiresDoneCallbackOnce(t *testing.T) {
	ctx := context.Background()
	a := NewArena(1)

	s, ok := a.Create(ctx, 0, 0, 1, nil)
	require.True(t, ok)

	done := 0
	s.SetDecodeDoneCallback(ctx, func(ctx context.Context) { done++ })
	require.False(t, s.Decoded())
	s.SetDecoded(ctx)
	require.True(t, s.Decoded())
	require.Equal(t, 1, done)

	require.Panics(t, func() { s.SetDecoded(ctx) })
	require.Equal(t, 1, done)
}

func TestReferenceSurfacesHeldUntilDependentsDecode(t *testing.T) {
	ctx := context.Background()
	a := NewArena(3)

	refReleased := false
	ref, ok := a.Create(ctx, 0, 0, 1, func(ctx context.Context, s *Surface) {
		refReleased = true
	})
	require.True(t, ok)

	depA, ok := a.Create(ctx, 1, 1, 2, nil)
	require.True(t, ok)
	depB, ok := a.Create(ctx, 2, 2, 3, nil)
	require.True(t, ok)

	depA.SetReferenceSurfaces(ctx, []*Surface{ref})
	depB.SetReferenceSurfaces(ctx, []*Surface{ref})
	require.Equal(t, 3, a.RefCount(ref.Index()))

	// The owner (the controller) is done with the reference frame, but two
	// in-flight dependents still predict from it.
	ref.Unref(ctx)
	require.False(t, refReleased)

	depA.SetDecoded(ctx)
	require.False(t, refReleased, "one dependent is still undecoded")

	depB.SetDecoded(ctx)
	require.True(t, refReleased, "the last dependent decoded, the reference may go")
}

func TestSetReferenceSurfacesTwicePanics(t *testing.T) {
	ctx := context.Background()
	a := NewArena(2)

	ref, ok := a.Create(ctx, 0, 0, 1, nil)
	require.True(t, ok)
	dep, ok := a.Create(ctx, 1, 1, 2, nil)
	require.True(t, ok)

	dep.SetReferenceSurfaces(ctx, []*Surface{ref})
	require.Panics(t, func() { dep.SetReferenceSurfaces(ctx, []*Surface{ref}) })
}

func TestMetadataImmutableAfterDecode(t *testing.T) {
	ctx := context.Background()
	a := NewArena(1)

	s, ok := a.Create(ctx, 0, 0, 1, nil)
	require.True(t, ok)

	r := types.Rect{Width: 640, Height: 360}
	cs := types.ColorSpace{Primaries: 1, Transfer: 1, Matrix: 1}
	s.SetVisibleRect(ctx, r)
	s.SetColorSpace(ctx, cs)
	s.SetDecoded(ctx)

	require.Equal(t, r, s.VisibleRect())
	require.Equal(t, cs, s.ColorSpace())
	require.Panics(t, func() { s.SetVisibleRect(ctx, types.Rect{Width: 1, Height: 1}) })
	require.Panics(t, func() { s.SetColorSpace(ctx, types.ColorSpace{}) })
}
