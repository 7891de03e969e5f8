// color_space.go defines the ColorSpace value type attached to decoded pictures.

package types

import "fmt"

// ColorSpace carries the colorimetry of a decoded picture. It is set once by
// the codec delegate before a surface is decoded and passed through to the
// client untouched.
type ColorSpace struct {
	Primaries uint8
	Transfer  uint8
	Matrix    uint8
	FullRange bool
}

func (cs ColorSpace) IsSpecified() bool {
	return cs != ColorSpace{}
}

func (cs ColorSpace) String() string {
	r := "limited"
	if cs.FullRange {
		r = "full"
	}
	return fmt.Sprintf("colorspace(p:%d t:%d m:%d %s)", cs.Primaries, cs.Transfer, cs.Matrix, r)
}
