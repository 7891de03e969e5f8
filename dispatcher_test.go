package hwdecpipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/xaionaro-go/hwdecpipe/types"
)

// dispatcherHarness runs the notifier and the worker inline, one queue at a
// time, so tests can observe the clearing round-trip step by step.
type clearedAck struct {
	OutputIndex int
	Generation  uint64
}

type dispatcherHarness struct {
	Dispatcher  *pictureDispatcher
	Client      *testClient
	Destroyed   atomic.Bool
	WorkerTasks []func(ctx context.Context)
	Cleared     []clearedAck
}

func newDispatcherHarness() *dispatcherHarness {
	h := &dispatcherHarness{
		Client: newTestClient(),
	}
	h.Dispatcher = newPictureDispatcher(h.Client, &h.Destroyed, func(ctx context.Context, fn func(ctx context.Context)) {
		h.WorkerTasks = append(h.WorkerTasks, fn)
	})
	h.Dispatcher.OnCleared = func(ctx context.Context, outputIndex int, generation uint64) {
		h.Cleared = append(h.Cleared, clearedAck{OutputIndex: outputIndex, Generation: generation})
	}
	return h
}

func (h *dispatcherHarness) RunNotifier(ctx context.Context) {
	for h.Dispatcher.clientTasks.Len(ctx) > 0 {
		fn, ok := h.Dispatcher.clientTasks.Pop(ctx)
		if !ok {
			return
		}
		fn(ctx)
	}
}

func (h *dispatcherHarness) RunWorker(ctx context.Context) {
	for len(h.WorkerTasks) > 0 {
		fn := h.WorkerTasks[0]
		h.WorkerTasks = h.WorkerTasks[1:]
		fn(ctx)
	}
}

func (h *dispatcherHarness) ReceivedPictures() []int32 {
	var ids []int32
	for {
		select {
		case picture := <-h.Client.Pictures:
			ids = append(ids, picture.BitstreamID)
		default:
			return ids
		}
	}
}

func TestDispatcherClearingRoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newDispatcherHarness()

	h.Dispatcher.Dispatch(ctx, types.Picture{BitstreamID: 1}, 0, 7, false)
	h.Dispatcher.Dispatch(ctx, types.Picture{BitstreamID: 2}, 1, 7, true)

	// the second picture is parked behind the first buffer's round trip
	require.Equal(t, 1, h.Dispatcher.PendingCount())
	h.RunNotifier(ctx)
	require.Equal(t, []int32{1}, h.ReceivedPictures())
	require.Empty(t, h.Cleared)

	// the round trip lands on the worker with the buffer set generation it
	// was dispatched under, marks the buffer cleared and unblocks the queue
	h.RunWorker(ctx)
	require.Equal(t, []clearedAck{{OutputIndex: 0, Generation: 7}}, h.Cleared)
	require.Equal(t, 0, h.Dispatcher.PendingCount())
	h.RunNotifier(ctx)
	require.Equal(t, []int32{2}, h.ReceivedPictures())
}

func TestDispatcherClearedBuffersPassStraightThrough(t *testing.T) {
	ctx := context.Background()
	h := newDispatcherHarness()

	h.Dispatcher.Dispatch(ctx, types.Picture{BitstreamID: 1}, 0, 1, true)
	h.Dispatcher.Dispatch(ctx, types.Picture{BitstreamID: 2}, 1, 1, true)
	require.Equal(t, 0, h.Dispatcher.PendingCount())

	h.RunNotifier(ctx)
	require.Equal(t, []int32{1, 2}, h.ReceivedPictures())
	require.Empty(t, h.WorkerTasks)
}

func TestDispatcherForceFlush(t *testing.T) {
	ctx := context.Background()
	h := newDispatcherHarness()

	h.Dispatcher.Dispatch(ctx, types.Picture{BitstreamID: 1}, 0, 1, false)
	h.Dispatcher.Dispatch(ctx, types.Picture{BitstreamID: 2}, 1, 1, false)
	h.Dispatcher.Dispatch(ctx, types.Picture{BitstreamID: 3}, 2, 1, false)
	require.Equal(t, 2, h.Dispatcher.PendingCount())

	h.Dispatcher.ForceFlush(ctx)
	require.Equal(t, 0, h.Dispatcher.PendingCount())
	require.Equal(t, []clearedAck{{OutputIndex: 1, Generation: 1}, {OutputIndex: 2, Generation: 1}}, h.Cleared)

	h.RunNotifier(ctx)
	require.Equal(t, []int32{1, 2, 3}, h.ReceivedPictures())
}

func TestDispatcherDropsNotificationsWhenDestroyed(t *testing.T) {
	ctx := context.Background()
	h := newDispatcherHarness()

	h.Destroyed.Store(true)
	require.False(t, h.Dispatcher.PostToClient(ctx, func(ctx context.Context) {
		require.FailNow(t, "a dropped notification ran")
	}))
	require.Equal(t, 0, h.Dispatcher.clientTasks.Len(ctx))
}
