// pixel_format.go defines the PixelFormat enum and its methods.

package types

import "fmt"

// PixelFormat identifies the memory layout of an output picture buffer.
// The pipeline treats it as an opaque negotiation token; only the device
// and the client interpret it.
type PixelFormat int

const (
	PixelFormatUnknown = PixelFormat(0x0)
	PixelFormatNV12    = PixelFormat(0x1)
	PixelFormatI420    = PixelFormat(0x2)
	PixelFormatYV12    = PixelFormat(0x3)
	PixelFormatP010    = PixelFormat(0x4)
	PixelFormatRGBA    = PixelFormat(0x5)
)

func PixelFormats() []PixelFormat {
	return []PixelFormat{
		PixelFormatNV12,
		PixelFormatI420,
		PixelFormatYV12,
		PixelFormatP010,
		PixelFormatRGBA,
	}
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatUnknown:
		return "unknown"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatI420:
		return "I420"
	case PixelFormatYV12:
		return "YV12"
	case PixelFormatP010:
		return "P010"
	case PixelFormatRGBA:
		return "RGBA"
	default:
		return "PixelFormat(" + fmt.Sprintf("%d", int(f)) + ")"
	}
}
