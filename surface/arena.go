package surface

import (
	"context"

	"github.com/xaionaro-go/hwdecpipe/logger"
)

// ReleaseFunc is invoked when the last owner of a surface drops it; it is
// where the bound buffer records return to their free lists.
type ReleaseFunc func(ctx context.Context, s *Surface)

type slot struct {
	refCount int
	surface  *Surface
}

// Arena is a fixed set of surface slots with an explicit per-slot reference
// count. It is not safe for concurrent use: the decode worker is the only
// mutator.
type Arena struct {
	slots []slot
	free  []int
}

func NewArena(capacity int) *Arena {
	a := &Arena{
		slots: make([]slot, capacity),
		free:  make([]int, 0, capacity),
	}
	for i := range a.slots {
		a.free = append(a.free, i)
	}
	return a
}

func (a *Arena) Capacity() int {
	return len(a.slots)
}

func (a *Arena) FreeCount() int {
	return len(a.free)
}

// LiveCount is the number of slots currently owned by at least one holder.
func (a *Arena) LiveCount() int {
	return len(a.slots) - len(a.free)
}

// RefCount exposes a slot's reference count for invariant checks.
func (a *Arena) RefCount(idx int) int {
	return a.slots[idx].refCount
}

// Create allocates a surface bound to the given records with one reference
// held by the caller. The second return value is false when every slot is
// taken; that is backpressure, not an error.
func (a *Arena) Create(
	ctx context.Context,
	inputIndex int,
	outputIndex int,
	bitstreamID int32,
	releaseFn ReleaseFunc,
) (*Surface, bool) {
	if len(a.free) == 0 {
		return nil, false
	}
	idx := a.free[0]
	a.free = a.free[1:]

	s := &Surface{
		arena:       a,
		index:       idx,
		InputIndex:  inputIndex,
		OutputIndex: outputIndex,
		BitstreamID: bitstreamID,
		releaseFn:   releaseFn,
	}
	a.slots[idx] = slot{
		refCount: 1,
		surface:  s,
	}
	logger.Tracef(ctx, "created %s", s)
	return s, true
}

func (a *Arena) ref(ctx context.Context, idx int) {
	sl := &a.slots[idx]
	assert(ctx, sl.refCount > 0, "ref on a dead slot", idx)
	sl.refCount++
}

func (a *Arena) unref(ctx context.Context, idx int) {
	sl := &a.slots[idx]
	assert(ctx, sl.refCount > 0, "unref on a dead slot", idx)
	sl.refCount--
	if sl.refCount > 0 {
		return
	}

	s := sl.surface
	sl.surface = nil
	a.free = append(a.free, idx)
	logger.Tracef(ctx, "released %s", s)
	if s.releaseFn != nil {
		s.releaseFn(ctx, s)
	}
}
