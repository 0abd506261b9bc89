package fifo

import "github.com/ardnew/usbfifo/pkg"

// DMA grants zero-copy access to the backing buffer and unchecked control of
// the cursors. It is meant for the one interrupt context driving a DMA
// transfer into or out of the FIFO.
//
// The cursor methods perform no capacity checks and take no locks. The owner
// must ensure no other goroutine moves the same cursor concurrently, and must
// never advance the write cursor more than 2*depth-1 items past the read
// cursor: up to that bound the next read repairs the overflow, past it the
// FIFO state is lost.
//
// After [DMA.Release] every method is a no-op.
type DMA struct {
	f *FIFO
}

// ClaimDMA returns the FIFO's DMA handle. Only one handle may be held at a
// time; a second claim fails with [pkg.ErrBusy] until the first is released.
func (f *FIFO) ClaimDMA() (*DMA, error) {
	if !f.dmaClaimed.CompareAndSwap(false, true) {
		return nil, pkg.ErrBusy
	}
	pkg.LogDebug(pkg.ComponentDMA, "dma claimed", "depth", f.depth)
	return &DMA{f: f}, nil
}

// Release gives up the handle so the FIFO can be claimed again.
func (d *DMA) Release() {
	if d.f == nil {
		return
	}
	d.f.dmaClaimed.Store(false)
	pkg.LogDebug(pkg.ComponentDMA, "dma released", "depth", d.f.depth)
	d.f = nil
}

// FIFO returns the FIFO the handle was claimed from, or nil after Release.
func (d *DMA) FIFO() *FIFO { return d.f }

// LinearReadInfo returns the longest contiguous window of stored items that
// starts offset items past the read cursor, holding at most n items, and
// the number of items in it. The window never crosses the end of the
// buffer: when the count is less than n and more items are stored, call
// again with offset increased by the count to get the wrapped remainder.
//
// An overflowed FIFO is repaired first. A zero count comes with a nil window.
// The read cursor is not moved; see [DMA.AdvanceReadPointer].
func (d *DMA) LinearReadInfo(offset, n uint16) ([]byte, uint16) {
	f := d.f
	if f == nil || f.depth == 0 {
		return nil, 0
	}

	w, r := f.loadWr(), f.loadRd()
	cnt := f.count(w, r)
	if cnt > f.depth {
		rl := f.readLock()
		rl.Lock()
		w, r, cnt = f.correctedCursors()
		rl.Unlock()
	}

	if cnt == 0 || offset >= cnt {
		return nil, 0
	}
	if avail := cnt - offset; n > avail {
		n = avail
	}

	wRel := f.relative(w, 0)
	rRel := f.relative(r, offset)

	var lin uint16
	if wRel > rRel {
		lin = wRel - rRel
	} else {
		// Wrapped, or full.
		lin = f.depth - rRel
	}
	n = min(n, lin)
	return f.window(rRel, n), n
}

// LinearWriteInfo returns the longest contiguous window of writable slots
// that starts offset items past the write cursor, holding at most n items,
// and the number of items in it. As with [DMA.LinearReadInfo], a count less
// than n means the space wraps and a second call is needed.
//
// Without overwrite the window is limited to the free space. With overwrite
// it may cover unread items, but never more than depth items and never so
// many that the writer would end up two laps ahead of the reader; the next
// read then discards the overwritten items. A request for more than 2*depth
// items is rejected with a zero count. The write cursor is not moved; see
// [DMA.AdvanceWritePointer].
func (d *DMA) LinearWriteInfo(offset, n uint16) ([]byte, uint16) {
	f := d.f
	if f == nil || f.depth == 0 {
		return nil, 0
	}

	w, r := f.loadWr(), f.loadRd()

	var avail uint16
	if f.overwritable.Load() {
		if uint32(n) > 2*uint32(f.depth) {
			pkg.LogWarn(pkg.ComponentDMA, "linear write request exceeds two laps",
				"n", n, "depth", f.depth)
			return nil, 0
		}
		// Stay within one lap of the reader.
		lap := uint32(f.maxPointerIdx) - uint32(min(f.count(w, r), f.maxPointerIdx))
		avail = uint16(min(lap, uint32(f.depth)))
	} else {
		avail = f.free(w, r)
	}

	if offset >= avail {
		return nil, 0
	}
	n = min(n, avail-offset)

	wRel := f.relative(w, offset)
	lin := f.depth - wRel
	if !f.overwritable.Load() {
		if rRel := f.relative(r, 0); wRel < rRel {
			lin = rRel - wRel
		}
	}
	n = min(n, lin)
	return f.window(wRel, n), n
}

// window returns the buffer bytes of n items starting at slot rel.
func (f *FIFO) window(rel, n uint16) []byte {
	if n == 0 {
		return nil
	}
	size := int(f.itemSize)
	start := int(rel) * size
	return f.buf[start : start+int(n)*size : start+int(n)*size]
}

// AdvanceWritePointer publishes n items written directly into the buffer.
func (d *DMA) AdvanceWritePointer(n uint16) {
	if f := d.f; f != nil && f.depth != 0 {
		f.storeWr(f.advance(f.loadWr(), n))
		f.stats.written.Add(uint64(n))
	}
}

// AdvanceReadPointer releases n items consumed directly from the buffer.
func (d *DMA) AdvanceReadPointer(n uint16) {
	if f := d.f; f != nil && f.depth != 0 {
		f.storeRd(f.advance(f.loadRd(), n))
		f.stats.read.Add(uint64(n))
	}
}

// BackwardWritePointer withdraws the last n written items.
func (d *DMA) BackwardWritePointer(n uint16) {
	if f := d.f; f != nil && f.depth != 0 {
		f.storeWr(f.backward(f.loadWr(), n))
	}
}

// BackwardReadPointer makes the last n read items readable again.
func (d *DMA) BackwardReadPointer(n uint16) {
	if f := d.f; f != nil && f.depth != 0 {
		f.storeRd(f.backward(f.loadRd(), n))
	}
}

// CorrectReadPointer repairs an overflow, as [FIFO.CorrectReadPointer].
// Call it before resuming reads after the DMA may have lapped the reader.
func (d *DMA) CorrectReadPointer() {
	if d.f != nil {
		d.f.CorrectReadPointer()
	}
}
