// picture.go defines the Picture type delivered to the client and the
// PictureBuffer type the client assigns to the pipeline.

package types

import "fmt"

// Picture is one decoded frame ready for display. BufferID names the
// picture buffer holding the pixels; BitstreamID names the coded buffer
// the frame was decoded from.
type Picture struct {
	BufferID    int32
	BitstreamID int32
	VisibleRect Rect
	ColorSpace  ColorSpace
}

func (p Picture) String() string {
	return fmt.Sprintf("picture(buffer:%d bitstream:%d visible:%s)", p.BufferID, p.BitstreamID, p.VisibleRect)
}

// PictureBuffer is a client-provided output buffer: an identifier plus an
// opaque backing handle (e.g. an imported GPU image). The pipeline never
// inspects the backing.
type PictureBuffer struct {
	ID      int32
	Size    Size
	Backing any
}

// BitstreamBuffer is one coded frame submitted by the client for decoding.
type BitstreamBuffer struct {
	ID   int32
	Data []byte
}

func (b BitstreamBuffer) String() string {
	return fmt.Sprintf("bitstream(id:%d size:%d)", b.ID, len(b.Data))
}
