// Package record holds the buffer record descriptors shared with the decode
// device and the fixed-size pools that track their ownership.
//
// All mutation of records and pools is confined to the decode worker; the
// pools therefore carry no locking of their own.
package record

// Input describes one input (coded data) buffer slot on the device queue.
// Data is the device-shared backing of Capacity bytes; BytesUsed is how much
// of it the current coded frame occupies.
type Input struct {
	Capacity  int
	BytesUsed int
	AtDevice  bool
	Data      []byte
}

// Output describes one output (picture) buffer slot on the device queue.
//
// An Output may not return to the free list while AtDevice is set or while
// TimesSentToClient is non-zero: the device or the display path still reads
// from it.
type Output struct {
	AtDevice          bool
	AtClient          bool
	TimesSentToClient int
	Cleared           bool
	PictureBufferID   int32
}

// InUse reports whether the record is referenced by anything beyond the pool.
func (r *Output) InUse() bool {
	return r.AtDevice || r.AtClient || r.TimesSentToClient > 0
}
