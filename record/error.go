package record

import "fmt"

type ErrBadIndex struct {
	Index int
	Count int
}

func (e ErrBadIndex) Error() string {
	return fmt.Sprintf("record index %d is out of range [0, %d)", e.Index, e.Count)
}

type ErrStillAtDevice struct {
	Index int
}

func (e ErrStillAtDevice) Error() string {
	return fmt.Sprintf("record %d is still owned by the device", e.Index)
}

type ErrStillDisplayed struct {
	Index int
}

func (e ErrStillDisplayed) Error() string {
	return fmt.Sprintf("record %d is still referenced by the display path", e.Index)
}

type ErrDoubleRelease struct {
	Index int
}

func (e ErrDoubleRelease) Error() string {
	return fmt.Sprintf("record %d is already in the free list", e.Index)
}
