package fifo

// Cursor arithmetic. All values are uint16 and rely on Go's defined unsigned
// wraparound; f.nonUsedIndexSpace is the distance skipped when a cursor
// crosses f.maxPointerIdx.

// advance moves the absolute cursor p forward by offset positions.
func (f *FIFO) advance(p, offset uint16) uint16 {
	next := p + offset
	// Test the 16-bit wrap first: it also lands in the unused space.
	if next < p || next > f.maxPointerIdx {
		return next + f.nonUsedIndexSpace
	}
	return next
}

// backward moves the absolute cursor p back by offset positions.
func (f *FIFO) backward(p, offset uint16) uint16 {
	prev := p - offset
	if prev > p || prev > f.maxPointerIdx {
		return prev - f.nonUsedIndexSpace
	}
	return prev
}

// relative returns the physical slot offset positions past cursor p.
func (f *FIFO) relative(p, offset uint16) uint16 {
	idx := f.advance(p, offset)
	for idx >= f.depth {
		idx -= f.depth
	}
	return idx
}

// count returns the distance from r to w. The result exceeds depth when the
// writer is more than a lap ahead.
func (f *FIFO) count(w, r uint16) uint16 {
	cnt := w - r
	if r > w {
		cnt -= f.nonUsedIndexSpace
	}
	return cnt
}

// free returns the number of unused slots, zero when full or overflowed.
func (f *FIFO) free(w, r uint16) uint16 {
	cnt := f.count(w, r)
	if cnt >= f.depth {
		return 0
	}
	return f.depth - cnt
}

func (f *FIFO) loadWr() uint16 { return uint16(f.wrIdx.Load()) }
func (f *FIFO) loadRd() uint16 { return uint16(f.rdIdx.Load()) }

func (f *FIFO) storeWr(p uint16) { f.wrIdx.Store(uint32(p)) }
func (f *FIFO) storeRd(p uint16) { f.rdIdx.Store(uint32(p)) }
