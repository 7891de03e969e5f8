// Package fakedevice provides an in-memory decode device. Tests script its
// completion order and failure injection; cmd/decodebench runs it in
// auto-complete mode.
package fakedevice

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/xsync"

	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/helpers/closuresignaler"
	"github.com/xaionaro-go/hwdecpipe/logger"
	"github.com/xaionaro-go/hwdecpipe/types"
)

const completionQueueSize = 64

// Device is a scriptable device.Device implementation.
type Device struct {
	*closuresignaler.ClosureSignaler
	Locker xsync.Mutex

	// AutoComplete makes every Submit complete immediately, in submission
	// order. Tests that need out-of-order completion leave it off and call
	// Complete explicitly.
	AutoComplete bool

	// NegotiateResults is consumed one entry per NegotiateOutputBuffers
	// call; a nil entry means success. When exhausted, calls succeed.
	NegotiateResults []error

	// SubmitHook, when set, may veto a submission.
	SubmitHook func(device.Request) error

	NegotiatedCount  int
	NegotiatedSize   types.Size
	NegotiatedFormat types.PixelFormat

	pending       []device.Request
	streamOn      bool
	completionsCh chan device.Completion
	interruptCh   chan struct{}
}

var _ device.Device = (*Device)(nil)

func New() *Device {
	return &Device{
		ClosureSignaler: closuresignaler.New(),
		completionsCh:   make(chan device.Completion, completionQueueSize),
		interruptCh:     make(chan struct{}, 1),
	}
}

func (d *Device) String() string {
	return "FakeDevice"
}

func (d *Device) NegotiateOutputBuffers(
	ctx context.Context,
	count int,
	size types.Size,
	format types.PixelFormat,
) (_err error) {
	logger.Debugf(ctx, "NegotiateOutputBuffers(%d, %s, %s)", count, size, format)
	defer func() { logger.Debugf(ctx, "/NegotiateOutputBuffers: %v", _err) }()
	if d.IsClosed() {
		return device.ErrClosed{}
	}

	return xsync.DoR1(ctx, &d.Locker, func() error {
		if len(d.NegotiateResults) > 0 {
			err := d.NegotiateResults[0]
			d.NegotiateResults = d.NegotiateResults[1:]
			if err != nil {
				return err
			}
		}
		d.NegotiatedCount = count
		d.NegotiatedSize = size
		d.NegotiatedFormat = format
		return nil
	})
}

func (d *Device) Submit(
	ctx context.Context,
	req device.Request,
) (_err error) {
	logger.Tracef(ctx, "Submit(%s)", req)
	defer func() { logger.Tracef(ctx, "/Submit: %v", _err) }()
	if d.IsClosed() {
		return device.ErrClosed{}
	}

	return xsync.DoR1(ctx, &d.Locker, func() error {
		if !d.streamOn {
			return fmt.Errorf("submit while the stream is off")
		}
		if d.SubmitHook != nil {
			if err := d.SubmitHook(req); err != nil {
				return err
			}
		}
		d.pending = append(d.pending, req)
		if d.AutoComplete {
			return d.completeLocked(ctx, req.OutputIndex)
		}
		return nil
	})
}

// Complete finishes the pending request bound to the given output record,
// regardless of submission order.
func (d *Device) Complete(ctx context.Context, outputIndex int) error {
	return xsync.DoR1(ctx, &d.Locker, func() error {
		return d.completeLocked(ctx, outputIndex)
	})
}

// CompleteNext finishes the oldest pending request.
func (d *Device) CompleteNext(ctx context.Context) error {
	return xsync.DoR1(ctx, &d.Locker, func() error {
		if len(d.pending) == 0 {
			return fmt.Errorf("nothing is pending")
		}
		return d.completeLocked(ctx, d.pending[0].OutputIndex)
	})
}

func (d *Device) completeLocked(ctx context.Context, outputIndex int) error {
	for i, req := range d.pending {
		if req.OutputIndex != outputIndex {
			continue
		}
		d.pending = append(d.pending[:i], d.pending[i+1:]...)
		completion := device.Completion{
			InputIndex:  req.InputIndex,
			OutputIndex: req.OutputIndex,
		}
		logger.Tracef(ctx, "completing %s", completion)
		d.completionsCh <- completion
		return nil
	}
	return fmt.Errorf("no pending request for output record %d", outputIndex)
}

func (d *Device) PendingCount(ctx context.Context) int {
	return xsync.DoR1(ctx, &d.Locker, func() int {
		return len(d.pending)
	})
}

func (d *Device) Dequeue(ctx context.Context) (device.Completion, error) {
	select {
	case <-ctx.Done():
		return device.Completion{}, ctx.Err()
	case <-d.CloseChan():
		return device.Completion{}, device.ErrClosed{}
	case <-d.interruptCh:
		return device.Completion{}, device.ErrInterrupted{}
	case completion := <-d.completionsCh:
		return completion, nil
	}
}

func (d *Device) Interrupt() {
	select {
	case d.interruptCh <- struct{}{}:
	default:
	}
}

func (d *Device) StreamOn(ctx context.Context) error {
	return xsync.DoR1(ctx, &d.Locker, func() error {
		d.streamOn = true
		return nil
	})
}

// StreamOff drops every pending request: the hardware returns ownership of
// all queued buffers and their completions never arrive.
func (d *Device) StreamOff(ctx context.Context) error {
	return xsync.DoR1(ctx, &d.Locker, func() error {
		d.streamOn = false
		d.pending = nil
		for {
			select {
			case <-d.completionsCh:
			default:
				return nil
			}
		}
	})
}

func (d *Device) Close(ctx context.Context) error {
	d.ClosureSignaler.Close(ctx)
	return nil
}
