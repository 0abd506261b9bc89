package fifo

// Write stores one item, the first ItemSize bytes of item.
//
// A full FIFO rejects the item unless it is overwritable, in which case the
// oldest unread item is given up instead and Write always succeeds. Write
// also returns false if item is shorter than ItemSize.
func (f *FIFO) Write(item []byte) bool {
	if f.depth == 0 || len(item) < int(f.itemSize) {
		return false
	}
	return f.writeN(copyInc, item, nil, 1) == 1
}

// WriteN stores up to n items from data and returns the number stored.
//
// n is limited to the whole items in data. Without overwrite, n is further
// limited to [FIFO.Remaining] and the excess is dropped. With overwrite and
// n >= depth, only the last depth items of data are kept and they are laid
// down starting at the current read cursor, so the write never has to move
// the read cursor.
func (f *FIFO) WriteN(data []byte, n uint16) uint16 {
	if f.depth == 0 {
		return 0
	}
	if whole := len(data) / int(f.itemSize); int(n) > whole {
		n = uint16(whole)
	}
	return f.writeN(copyInc, data, nil, n)
}

// WriteNFromRegister stores up to n items read from the constant-address
// register reg, following the same capacity rules as [FIFO.WriteN].
//
// The register is read ceil(n*ItemSize/4) times for the items kept; items
// dropped by an overwriting write of n >= depth are still read from reg and
// discarded so that the register is left at the end of the transfer.
func (f *FIFO) WriteNFromRegister(reg Register, n uint16) uint16 {
	if f.depth == 0 || reg == nil {
		return 0
	}
	return f.writeN(copyConst, nil, reg, n)
}

func (f *FIFO) writeN(mode copyMode, data []byte, reg Register, n uint16) uint16 {
	if n == 0 {
		return 0
	}

	wl := f.writeLock()
	wl.Lock()
	defer wl.Unlock()

	w, r := f.loadWr(), f.loadRd()
	skip := 0 // leading source bytes not stored

	switch {
	case !f.overwritable.Load():
		if free := f.free(w, r); n > free {
			f.stats.dropped.Add(uint64(n - free))
			n = free
		}
		if n == 0 {
			return 0
		}

	case n >= f.depth:
		// The whole ring is rewritten. Start at the read cursor rather than
		// moving it, which would race with the reader.
		lost := uint64(f.count(w, r)) + uint64(n-f.depth)
		skip = int(n-f.depth) * int(f.itemSize)
		n = f.depth
		w = r
		f.stats.overwritten.Add(lost)

	case uint32(f.count(w, r))+uint32(n) >= 2*uint32(f.depth):
		// Already a lap ahead: one more lap would wrap the count back to
		// near zero. Pull the write cursor back one lap, keeping its slot.
		w = f.backward(w, f.depth)
		f.stats.overwritten.Add(uint64(f.depth))
	}

	if mode == copyInc {
		data = data[skip:]
	}
	f.pushN(mode, data, reg, skip, n, f.relative(w, 0))
	f.storeWr(f.advance(w, n))
	f.stats.written.Add(uint64(n))
	return n
}

// Read removes the oldest item and copies it into item.
// It returns false if the FIFO is empty or item is shorter than ItemSize.
func (f *FIFO) Read(item []byte) bool {
	if f.depth == 0 || len(item) < int(f.itemSize) {
		return false
	}
	return f.readN(copyInc, item, nil, 1) == 1
}

// ReadN removes up to n items into data and returns the number removed.
// n is limited to the whole items data can hold and to the items stored.
func (f *FIFO) ReadN(data []byte, n uint16) uint16 {
	if f.depth == 0 {
		return 0
	}
	if whole := len(data) / int(f.itemSize); int(n) > whole {
		n = uint16(whole)
	}
	return f.readN(copyInc, data, nil, n)
}

// ReadNToRegister removes up to n items and writes them to the
// constant-address register reg in full words, the last one zero-padded.
func (f *FIFO) ReadNToRegister(reg Register, n uint16) uint16 {
	if f.depth == 0 || reg == nil {
		return 0
	}
	return f.readN(copyConst, nil, reg, n)
}

func (f *FIFO) readN(mode copyMode, data []byte, reg Register, n uint16) uint16 {
	rl := f.readLock()
	rl.Lock()
	defer rl.Unlock()

	r, n := f.peekN(mode, data, reg, 0, n)
	if n > 0 {
		f.storeRd(f.advance(r, n))
		f.stats.read.Add(uint64(n))
	}
	return n
}

// PeekAt copies the item offset positions past the oldest one into item
// without removing anything. It returns false if fewer than offset+1 items
// are stored or item is shorter than ItemSize.
func (f *FIFO) PeekAt(offset uint16, item []byte) bool {
	if f.depth == 0 || len(item) < int(f.itemSize) {
		return false
	}
	return f.PeekAtN(offset, item, 1) == 1
}

// PeekAtN copies up to n items, starting offset positions past the oldest,
// into data without removing them. It returns the number of items copied.
func (f *FIFO) PeekAtN(offset uint16, data []byte, n uint16) uint16 {
	if f.depth == 0 {
		return 0
	}
	if whole := len(data) / int(f.itemSize); int(n) > whole {
		n = uint16(whole)
	}

	rl := f.readLock()
	rl.Lock()
	defer rl.Unlock()

	_, n = f.peekN(copyInc, data, nil, offset, n)
	return n
}

// peekN copies up to n items starting offset past the read cursor, after
// repairing an overflow. It returns the read cursor in effect and the number
// of items copied. Callers hold the read lock.
func (f *FIFO) peekN(mode copyMode, data []byte, reg Register, offset, n uint16) (uint16, uint16) {
	_, r, cnt := f.correctedCursors()
	if n == 0 || offset >= cnt {
		return r, 0
	}
	if avail := cnt - offset; n > avail {
		n = avail
	}
	f.pullN(mode, data, reg, n, f.relative(r, offset))
	return r, n
}
