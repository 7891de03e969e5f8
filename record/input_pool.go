package record

// InputPool is a fixed array of Input records plus a FIFO free list.
// FIFO (rather than LIFO) keeps buffer reuse fair, which makes device-side
// starvation bugs reproducible instead of intermittent.
type InputPool struct {
	records []Input
	free    []int
}

func NewInputPool(count int, capacity int) *InputPool {
	p := &InputPool{
		records: make([]Input, count),
		free:    make([]int, 0, count),
	}
	for i := range p.records {
		p.records[i].Capacity = capacity
		p.records[i].Data = make([]byte, capacity)
		p.free = append(p.free, i)
	}
	return p
}

func (p *InputPool) Len() int {
	return len(p.records)
}

func (p *InputPool) FreeCount() int {
	return len(p.free)
}

func (p *InputPool) AtDeviceCount() int {
	n := 0
	for i := range p.records {
		if p.records[i].AtDevice {
			n++
		}
	}
	return n
}

func (p *InputPool) Get(idx int) *Input {
	return &p.records[idx]
}

// Acquire pops the front of the free list. The second return value is false
// when no record is available; that is backpressure, not an error.
func (p *InputPool) Acquire() (int, bool) {
	if len(p.free) == 0 {
		return -1, false
	}
	idx := p.free[0]
	p.free = p.free[1:]
	return idx, true
}

// Release returns a record to the back of the free list.
func (p *InputPool) Release(idx int) error {
	if idx < 0 || idx >= len(p.records) {
		return ErrBadIndex{Index: idx, Count: len(p.records)}
	}
	r := &p.records[idx]
	if r.AtDevice {
		return ErrStillAtDevice{Index: idx}
	}
	for _, freeIdx := range p.free {
		if freeIdx == idx {
			return ErrDoubleRelease{Index: idx}
		}
	}
	r.BytesUsed = 0
	p.free = append(p.free, idx)
	return nil
}
