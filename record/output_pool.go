package record

// OutputPool is a fixed array of Output records plus a FIFO free list.
// Output records are bound 1:1 to client picture buffers for the lifetime
// of the pool; the pool is rebuilt on buffer reconfiguration.
type OutputPool struct {
	records []Output
	free    []int
}

func NewOutputPool(pictureBufferIDs []int32) *OutputPool {
	p := &OutputPool{
		records: make([]Output, len(pictureBufferIDs)),
		free:    make([]int, 0, len(pictureBufferIDs)),
	}
	for i := range p.records {
		p.records[i].PictureBufferID = pictureBufferIDs[i]
		p.free = append(p.free, i)
	}
	return p
}

func (p *OutputPool) Len() int {
	return len(p.records)
}

func (p *OutputPool) FreeCount() int {
	return len(p.free)
}

func (p *OutputPool) AtDeviceCount() int {
	n := 0
	for i := range p.records {
		if p.records[i].AtDevice {
			n++
		}
	}
	return n
}

func (p *OutputPool) AtClientCount() int {
	n := 0
	for i := range p.records {
		if p.records[i].AtClient {
			n++
		}
	}
	return n
}

func (p *OutputPool) Get(idx int) *Output {
	return &p.records[idx]
}

// IndexOfPictureBuffer resolves a client picture buffer ID back to the
// record bound to it, or -1.
func (p *OutputPool) IndexOfPictureBuffer(pictureBufferID int32) int {
	for i := range p.records {
		if p.records[i].PictureBufferID == pictureBufferID {
			return i
		}
	}
	return -1
}

// Acquire pops the front of the free list. The second return value is false
// when no record is available; that is backpressure, not an error.
func (p *OutputPool) Acquire() (int, bool) {
	if len(p.free) == 0 {
		return -1, false
	}
	idx := p.free[0]
	p.free = p.free[1:]
	return idx, true
}

// Release returns a record to the back of the free list. A record still held
// by the device or the display path must not be released.
func (p *OutputPool) Release(idx int) error {
	if idx < 0 || idx >= len(p.records) {
		return ErrBadIndex{Index: idx, Count: len(p.records)}
	}
	r := &p.records[idx]
	if r.AtDevice {
		return ErrStillAtDevice{Index: idx}
	}
	if r.AtClient || r.TimesSentToClient > 0 {
		return ErrStillDisplayed{Index: idx}
	}
	for _, freeIdx := range p.free {
		if freeIdx == idx {
			return ErrDoubleRelease{Index: idx}
		}
	}
	p.free = append(p.free, idx)
	return nil
}
