package hwdecpipe

import (
	"time"

	"github.com/xaionaro-go/hwdecpipe/device"
	"github.com/xaionaro-go/hwdecpipe/types"
)

const (
	// DefaultInputBufferCount is how many coded-data buffers are shared with
	// the device; it bounds how far ahead of the hardware the client may run.
	DefaultInputBufferCount = 8

	// DefaultInputBufferCapacity fits any reasonable coded frame at 1080p.
	DefaultInputBufferCapacity = 2 * 1024 * 1024

	// DefaultDestroyPollInterval is how often teardown re-nudges a device
	// wait that may never complete on its own.
	DefaultDestroyPollInterval = 10 * time.Millisecond
)

// Config is the static configuration of a Controller. The zero value is
// usable: every field falls back to its default.
type Config struct {
	InputBufferCount    int
	InputBufferCapacity int
	OutputFormat        types.PixelFormat
	RetryAttempts       int
	RetryDelay          time.Duration
	DestroyPollInterval time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.InputBufferCount == 0 {
		cfg.InputBufferCount = DefaultInputBufferCount
	}
	if cfg.InputBufferCapacity == 0 {
		cfg.InputBufferCapacity = DefaultInputBufferCapacity
	}
	if cfg.OutputFormat == types.PixelFormatUnknown {
		cfg.OutputFormat = types.PixelFormatNV12
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = device.DefaultRetryAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = device.DefaultRetryDelay
	}
	if cfg.DestroyPollInterval == 0 {
		cfg.DestroyPollInterval = DefaultDestroyPollInterval
	}
	return cfg
}
