// Package hwdecpipe implements a hardware-accelerated video decode pipeline:
// it drives an abstract decode device through coded-frame submissions, tracks
// the device-shared input/output buffer pools, binds decode requests to
// reusable surfaces and sequences flush/reset/reconfiguration across the
// decode worker, the device poller and the client notifier.
//
// The codec itself lives behind the accelerator.Accelerator interface; the
// hardware lives behind device.Device.
package hwdecpipe

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/xcontext"
	"go.uber.org/atomic"

	"github.com/xaionaro-go/hwdecpipe/accelerator"
	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/helpers/closuresignaler"
	"github.com/xaionaro-go/hwdecpipe/helpers/taskqueue"
	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/record"
	"github.com/xaionaro-go/hwdecpipe/surface"
	"github.com/xaionaro-go/hwdecpipe/types"
)

type task struct {
	fn        func(ctx context.Context)
	isDestroy bool
}

type pendingInput struct {
	Bitstream       types.BitstreamBuffer
	IsFlushSentinel bool
}

type displayQueueEntry struct {
	BitstreamID int32
	Surface     *surface.Surface
}

// Controller is the pipeline state machine. Public methods may be called
// from any goroutine; they hand off to the decode worker, where all pool,
// map and state mutation happens. The fields below the "decode worker only"
// marker must never be touched from anywhere else.
type Controller struct {
	*closuresignaler.ClosureSignaler

	Config      Config
	Device      device.Device
	Accelerator accelerator.Accelerator
	Client      Client
	Stats       *Statistics

	destroyed     atomic.Bool
	workerStarted bool
	tasks         *taskqueue.Queue[task]
	workerDone    chan struct{}
	dispatcher    *pictureDispatcher
	poller        *Poller

	cancelWorker context.CancelFunc

	// decode worker only:
	state               State
	inputPool           *record.InputPool
	outputPool          *record.OutputPool
	poolGeneration      uint64
	surfaces            *surface.Arena
	inFlight            map[int]*surface.Surface
	boundOutput         map[int]*surface.Surface
	pendingInput        []pendingInput
	displayQueue        []displayQueueEntry
	pictureBuffers      map[int32]types.PictureBuffer
	currentBitstream    *types.BitstreamBuffer
	requestedPictureSet accelerator.PictureSetRequest

	pendingSurfaceSetChange bool
	pendingFlush            bool
	pendingReset            bool
}

var _ accelerator.SurfaceHandler = (*Controller)(nil)

func New(
	ctx context.Context,
	cfg Config,
	dev device.Device,
	accel accelerator.Accelerator,
	client Client,
) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		ClosureSignaler: closuresignaler.New(),
		Config:          cfg,
		Device:          dev,
		Accelerator:     accel,
		Client:          client,
		Stats:           &Statistics{},

		tasks:      taskqueue.New[task](),
		workerDone: make(chan struct{}),

		state:          StateUninitialized,
		inFlight:       map[int]*surface.Surface{},
		boundOutput:    map[int]*surface.Surface{},
		pictureBuffers: map[int32]types.PictureBuffer{},
	}
	c.dispatcher = newPictureDispatcher(
		client,
		&c.destroyed,
		c.postFromDispatcher,
	)
	c.dispatcher.OnCleared = c.onPictureCleared
	c.poller = &Poller{
		Device:       dev,
		OnCompletion: c.onDeviceCompletion,
		OnError:      c.onPollerError,
	}
	return c
}

func (c *Controller) String() string {
	return fmt.Sprintf("Controller(%s, %s)", c.Device, c.Accelerator)
}

// Initialize probes the device and starts the three execution contexts:
// decode worker, device poller and client notifier. Some devices report
// busy right after being opened, hence the bounded retry around the probe.
func (c *Controller) Initialize(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Initialize")
	defer func() { logger.Debugf(ctx, "/Initialize: %v", _err) }()

	if c.state != StateUninitialized {
		return fmt.Errorf("initialize was called twice")
	}

	err := device.RetryTransient(ctx, c.Config.RetryAttempts, c.Config.RetryDelay, func(ctx context.Context) error {
		return c.Device.NegotiateOutputBuffers(ctx, 0, types.Size{}, c.Config.OutputFormat)
	})
	if err != nil {
		// Initialize runs on the client context, so the one-time error
		// notification may go out synchronously.
		c.state = StateError
		c.Client.NotifyError(ctx, types.ErrorPlatformFailure)
		return fmt.Errorf("unable to probe the device: %w", err)
	}

	c.inputPool = record.NewInputPool(c.Config.InputBufferCount, c.Config.InputBufferCapacity)
	c.Accelerator.SetSurfaceHandler(c)

	if err := c.Device.StreamOn(ctx); err != nil {
		c.state = StateError
		c.Client.NotifyError(ctx, types.ErrorPlatformFailure)
		return fmt.Errorf("unable to start the device stream: %w", err)
	}

	c.state = StateInitialized

	// the pipeline outlives the caller's context: teardown is an explicit
	// Destroy, not a context cancellation racing the hardware
	workerCtx, cancelFn := context.WithCancel(xcontext.DetachDone(ctx))
	c.cancelWorker = cancelFn
	workerCtx = belt.WithField(workerCtx, "controller", c.Device.String())

	c.workerStarted = true
	observability.Go(workerCtx, func(ctx context.Context) {
		c.dispatcher.ServeNotifier(ctx)
	})
	observability.Go(workerCtx, func(ctx context.Context) {
		c.serveWorker(ctx)
	})
	observability.Go(workerCtx, func(ctx context.Context) {
		c.poller.Serve(ctx)
	})
	return nil
}
