// geometry.go defines the basic geometric types shared across the pipeline.

package types

import "fmt"

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rect is a rectangle within a coded picture; used for the visible
// (non-padded) region of a decoded frame.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}
