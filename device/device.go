// Package device defines the capability surface the pipeline consumes from a
// hardware decode device. The concrete command wire format (V4L2, VA-API,
// vendor blobs) lives behind this interface and is out of the pipeline's
// sight: the pipeline only moves buffer record indices in and out.
package device

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/hwdecpipe/types"
)

// Request is one decode command: a filled input record and the output record
// the device should decode into.
type Request struct {
	InputIndex  int
	OutputIndex int
	BytesUsed   int
}

func (r Request) String() string {
	return fmt.Sprintf("request(in:%d out:%d bytes:%d)", r.InputIndex, r.OutputIndex, r.BytesUsed)
}

// Completion reports that one Request finished on the device. Completions
// may arrive in any order relative to submissions.
type Completion struct {
	InputIndex  int
	OutputIndex int
}

func (c Completion) String() string {
	return fmt.Sprintf("completion(in:%d out:%d)", c.InputIndex, c.OutputIndex)
}

// Device is the decode device as seen by the pipeline.
//
// Submit and stream control are called from the decode worker only. Dequeue
// is called from the device poller and blocks until a completion is ready,
// the context is cancelled, or Interrupt is called. After StreamOff the
// device owns no buffers and pending completions are dropped.
type Device interface {
	fmt.Stringer

	// NegotiateOutputBuffers probes/sets the output buffer set. It may fail
	// with ErrAgain (transient; the caller retries a bounded number of
	// times) or any other error (fatal).
	NegotiateOutputBuffers(ctx context.Context, count int, size types.Size, format types.PixelFormat) error

	Submit(ctx context.Context, req Request) error
	Dequeue(ctx context.Context) (Completion, error)

	// Interrupt wakes up one blocked Dequeue with ErrInterrupted.
	Interrupt()

	StreamOn(ctx context.Context) error
	StreamOff(ctx context.Context) error

	Close(ctx context.Context) error
}
