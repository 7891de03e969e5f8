// dispatcher.go: the picture dispatcher sequences PictureReady
// notifications. A buffer that was never shown to the client must
// round-trip through the client notifier context once ("clearing") before
// notifications for other buffers may follow; already-cleared buffers are
// posted straight through. During flush/reset/reconfiguration everything
// pending is force-flushed, because the client is about to hear
// "operation complete" and must not see pictures trickle in afterwards.

package hwdecpipe

import (
	"context"

	"go.uber.org/atomic"

	"github.com/xaionaro-go/hwdecpipe/helpers/taskqueue"
	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/types"
)

type clientTask func(ctx context.Context)

type pendingPicture struct {
	picture     types.Picture
	outputIndex int
	generation  uint64
	cleared     bool
}

// pictureDispatcher is owned by the decode worker except for ServeNotifier,
// which is the client notifier context (the third and last execution
// context of the pipeline).
type pictureDispatcher struct {
	client       Client
	destroyed    *atomic.Bool
	clientTasks  *taskqueue.Queue[clientTask]
	postToWorker func(ctx context.Context, fn func(ctx context.Context))

	// OnCleared runs on the decode worker after a clearing round-trip. The
	// generation identifies the output buffer set the picture came from, so
	// an ack that raced a reconfiguration can be told apart from one for
	// the current set.
	OnCleared func(ctx context.Context, outputIndex int, generation uint64)

	// decode worker only:
	pending       []pendingPicture
	awaitingClear bool
}

func newPictureDispatcher(
	client Client,
	destroyed *atomic.Bool,
	postToWorker func(ctx context.Context, fn func(ctx context.Context)),
) *pictureDispatcher {
	return &pictureDispatcher{
		client:       client,
		destroyed:    destroyed,
		clientTasks:  taskqueue.New[clientTask](),
		postToWorker: postToWorker,
	}
}

// ServeNotifier runs client notifications in order, on a context the client
// does not share with the decode worker.
func (d *pictureDispatcher) ServeNotifier(ctx context.Context) {
	logger.Debugf(ctx, "ServeNotifier")
	defer func() { logger.Debugf(ctx, "/ServeNotifier") }()

	for {
		fn, ok := d.clientTasks.Pop(ctx)
		if !ok {
			return
		}
		if d.destroyed.Load() {
			logger.Debugf(ctx, "skipping a client notification: destroying")
			continue
		}
		fn(ctx)
	}
}

// PostToClient enqueues a notification; it never blocks, and during
// teardown notifications are dropped.
func (d *pictureDispatcher) PostToClient(ctx context.Context, fn clientTask) bool {
	if d.destroyed.Load() {
		logger.Debugf(ctx, "dropping a client notification: destroying")
		return false
	}
	d.clientTasks.Push(ctx, fn)
	return true
}

// Dispatch queues one picture and sends as much of the pending FIFO as the
// clearing rule allows.
func (d *pictureDispatcher) Dispatch(
	ctx context.Context,
	picture types.Picture,
	outputIndex int,
	generation uint64,
	cleared bool,
) {
	logger.Tracef(ctx, "Dispatch(%s, cleared: %v)", picture, cleared)
	d.pending = append(d.pending, pendingPicture{
		picture:     picture,
		outputIndex: outputIndex,
		generation:  generation,
		cleared:     cleared,
	})
	d.drain(ctx)
}

func (d *pictureDispatcher) PendingCount() int {
	return len(d.pending)
}

func (d *pictureDispatcher) drain(ctx context.Context) {
	for len(d.pending) > 0 && !d.awaitingClear {
		p := d.pending[0]
		d.pending = d.pending[1:]

		if p.cleared {
			d.PostToClient(ctx, func(ctx context.Context) {
				d.client.PictureReady(ctx, p.picture)
			})
			continue
		}

		// first time this buffer reaches the client: round-trip through the
		// notifier context before anything else may be sent
		d.awaitingClear = true
		d.PostToClient(ctx, func(ctx context.Context) {
			d.client.PictureReady(ctx, p.picture)
			d.postToWorker(ctx, func(ctx context.Context) {
				d.awaitingClear = false
				if d.OnCleared != nil {
					d.OnCleared(ctx, p.outputIndex, p.generation)
				}
				d.drain(ctx)
			})
		})
	}
}

// ForceFlush pushes out everything pending regardless of clearing state.
func (d *pictureDispatcher) ForceFlush(ctx context.Context) {
	logger.Debugf(ctx, "ForceFlush: %d pending", len(d.pending))
	d.awaitingClear = false
	pending := d.pending
	d.pending = nil
	for _, p := range pending {
		p := p
		d.PostToClient(ctx, func(ctx context.Context) {
			d.client.PictureReady(ctx, p.picture)
		})
		if d.OnCleared != nil {
			d.OnCleared(ctx, p.outputIndex, p.generation)
		}
	}
}
