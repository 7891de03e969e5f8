package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInputPoolAcquireIsFIFO(t *testing.T) {
	p := NewInputPool(3, 1024)
	require.Equal(t, 3, p.FreeCount())

	a, ok := p.Acquire()
	require.True(t, ok)
	b, ok := p.Acquire()
	require.True(t, ok)
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)

	require.NoError(t, p.Release(a))
	require.NoError(t, p.Release(b))

	c, ok := p.Acquire()
	require.True(t, ok)
	require.Equal(t, 2, c, "the record that was never handed out goes first")

	d, ok := p.Acquire()
	require.True(t, ok)
	require.Equal(t, a, d, "released records come back in release order")
}

func TestInputPoolExhaustionIsNotAnError(t *testing.T) {
	p := NewInputPool(1, 1024)
	_, ok := p.Acquire()
	require.True(t, ok)
	idx, ok := p.Acquire()
	require.False(t, ok)
	require.Equal(t, -1, idx)
}

func TestInputPoolReleaseWhileAtDevice(t *testing.T) {
	p := NewInputPool(2, 1024)
	idx, ok := p.Acquire()
	require.True(t, ok)
	p.Get(idx).AtDevice = true
	require.ErrorAs(t, p.Release(idx), &ErrStillAtDevice{})
	p.Get(idx).AtDevice = false
	require.NoError(t, p.Release(idx))
}

func TestInputPoolDoubleRelease(t *testing.T) {
	p := NewInputPool(2, 1024)
	idx, ok := p.Acquire()
	require.True(t, ok)
	require.NoError(t, p.Release(idx))
	require.ErrorAs(t, p.Release(idx), &ErrDoubleRelease{})
}

func TestInputPoolReleaseResetsBytesUsed(t *testing.T) {
	p := NewInputPool(1, 1024)
	idx, ok := p.Acquire()
	require.True(t, ok)
	p.Get(idx).BytesUsed = 77
	require.NoError(t, p.Release(idx))
	require.Equal(t, 0, p.Get(idx).BytesUsed)
}

func TestInputPoolPartitionInvariant(t *testing.T) {
	p := NewInputPool(4, 1024)

	acquired := make([]int, 0, 4)
	for i := 0; i < 3; i++ {
		idx, ok := p.Acquire()
		require.True(t, ok)
		p.Get(idx).AtDevice = true
		acquired = append(acquired, idx)
	}
	require.Equal(t, p.Len(), p.FreeCount()+p.AtDeviceCount())

	for _, idx := range acquired {
		p.Get(idx).AtDevice = false
		require.NoError(t, p.Release(idx))
		require.Equal(t, p.Len(), p.FreeCount()+p.AtDeviceCount())
	}
}

func TestOutputPoolReleaseInvariants(t *testing.T) {
	p := NewOutputPool([]int32{10, 11})
	idx, ok := p.Acquire()
	require.True(t, ok)

	r := p.Get(idx)
	r.AtDevice = true
	require.ErrorAs(t, p.Release(idx), &ErrStillAtDevice{})

	r.AtDevice = false
	r.TimesSentToClient = 1
	require.ErrorAs(t, p.Release(idx), &ErrStillDisplayed{})

	r.TimesSentToClient = 0
	r.AtClient = true
	require.ErrorAs(t, p.Release(idx), &ErrStillDisplayed{})

	r.AtClient = false
	require.NoError(t, p.Release(idx))
}

func TestOutputPoolIndexOfPictureBuffer(t *testing.T) {
	p := NewOutputPool([]int32{100, 200, 300})
	require.Equal(t, 1, p.IndexOfPictureBuffer(200))
	require.Equal(t, -1, p.IndexOfPictureBuffer(999))
}

func TestOutputPoolPartitionInvariant(t *testing.T) {
	p := NewOutputPool([]int32{0, 1, 2})

	a, ok := p.Acquire()
	require.True(t, ok)
	p.Get(a).AtDevice = true

	b, ok := p.Acquire()
	require.True(t, ok)
	p.Get(b).AtClient = true
	p.Get(b).TimesSentToClient = 1

	require.Equal(t, p.Len(), p.FreeCount()+p.AtDeviceCount()+p.AtClientCount())
}
