// poller.go: the device poller is the second execution context. It blocks
// on the device completion primitive and re-enters the decode worker; it
// never mutates controller state itself.

package hwdecpipe

import (
	"context"
	"errors"

	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/logger"
)

// Poller pulls completions out of the device for as long as its context
// lives.
type Poller struct {
	Device       device.Device
	OnCompletion func(ctx context.Context, completion device.Completion)
	OnError      func(ctx context.Context, err error)
}

func (p *Poller) Serve(ctx context.Context) {
	logger.Debugf(ctx, "Serve")
	defer func() { logger.Debugf(ctx, "/Serve") }()

	for {
		completion, err := p.Device.Dequeue(ctx)
		switch {
		case err == nil:
			p.OnCompletion(ctx, completion)
		case errors.As(err, &device.ErrInterrupted{}):
			// an interrupt either means teardown (the context dies right
			// after) or a stream restart; either way, just loop
			select {
			case <-ctx.Done():
				return
			default:
			}
		case errors.As(err, &device.ErrClosed{}), errors.Is(err, context.Canceled):
			return
		case ctx.Err() != nil:
			return
		default:
			logger.Errorf(ctx, "dequeue failed: %v", err)
			if p.OnError != nil {
				p.OnError(ctx, err)
			}
			return
		}
	}
}
