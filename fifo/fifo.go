package fifo

import (
	"sync"
	"sync/atomic"

	"github.com/ardnew/usbfifo/pkg"
)

// MaxDepth is the largest supported depth in items.
// The cursor space is 2*depth positions and must fit in 16 bits.
const MaxDepth = 0x8000

// maxIndex is the top of the 16-bit cursor storage.
const maxIndex = 0xFFFF

// Option configures optional FIFO behavior.
type Option func(*FIFO)

// WithWriteLock serializes all write-side operations on l.
// Use it when more than one goroutine produces into the FIFO.
func WithWriteLock(l sync.Locker) Option {
	return func(f *FIFO) {
		if l != nil {
			f.wrLock = l
		}
	}
}

// WithReadLock serializes all read-side operations on l.
// Use it when more than one goroutine consumes from the FIFO.
func WithReadLock(l sync.Locker) Option {
	return func(f *FIFO) {
		if l != nil {
			f.rdLock = l
		}
	}
}

// nopLocker is the lock used for a side without a configured Locker.
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// FIFO is a circular queue of fixed-size items stored in a caller-owned buffer.
//
// The zero value is an unconfigured FIFO on which every operation reports
// nothing written, nothing read and zero counts; call [FIFO.Configure] before
// use, or construct with [New].
type FIFO struct {
	buf      []byte
	depth    uint16
	itemSize uint16

	maxPointerIdx     uint16 // 2*depth - 1
	nonUsedIndexSpace uint16 // maxIndex - maxPointerIdx

	overwritable atomic.Bool

	// Absolute cursors in [0, maxPointerIdx], held in 32-bit atomics so that
	// the two sides observe each other without a shared lock.
	wrIdx atomic.Uint32
	rdIdx atomic.Uint32

	wrLock sync.Locker
	rdLock sync.Locker

	dmaClaimed atomic.Bool

	stats counters
}

// New creates a FIFO of depth items, each itemSize bytes wide, stored in buf.
// See [FIFO.Configure] for the accepted parameters.
func New(buf []byte, depth, itemSize uint16, overwritable bool, opts ...Option) (*FIFO, error) {
	f := &FIFO{}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if err := f.Configure(buf, depth, itemSize, overwritable); err != nil {
		return nil, err
	}
	return f, nil
}

// Configure sets the backing buffer, depth, item size and overwrite policy,
// and resets both cursors. The buffer must hold at least depth*itemSize
// bytes; the FIFO never allocates or releases it.
//
// Configure waits for in-flight operations on both sides. On error the FIFO
// is left exactly as it was.
func (f *FIFO) Configure(buf []byte, depth, itemSize uint16, overwritable bool) error {
	switch {
	case depth > MaxDepth:
		pkg.LogWarn(pkg.ComponentFIFO, "configuration rejected",
			"depth", depth, "max", MaxDepth)
		return pkg.ErrDepthTooLarge
	case depth == 0:
		return pkg.ErrInvalidDepth
	case itemSize == 0:
		return pkg.ErrInvalidItemSize
	case len(buf) < int(depth)*int(itemSize):
		pkg.LogWarn(pkg.ComponentFIFO, "configuration rejected",
			"bufferLen", len(buf), "need", int(depth)*int(itemSize))
		return pkg.ErrBufferTooSmall
	}

	wl, rl := f.writeLock(), f.readLock()
	wl.Lock()
	defer wl.Unlock()
	rl.Lock()
	defer rl.Unlock()

	f.buf = buf[:int(depth)*int(itemSize)]
	f.depth = depth
	f.itemSize = itemSize
	f.overwritable.Store(overwritable)
	f.resetIndices()

	pkg.LogDebug(pkg.ComponentFIFO, "configured",
		"depth", depth, "itemSize", itemSize, "overwritable", overwritable)
	return nil
}

// resetIndices recomputes the cursor window and zeroes both cursors.
// Callers hold both side locks.
func (f *FIFO) resetIndices() {
	f.maxPointerIdx = uint16(2*uint32(f.depth) - 1)
	f.nonUsedIndexSpace = maxIndex - f.maxPointerIdx
	f.storeWr(0)
	f.storeRd(0)
}

func (f *FIFO) writeLock() sync.Locker {
	if f.wrLock == nil {
		return nopLocker{}
	}
	return f.wrLock
}

func (f *FIFO) readLock() sync.Locker {
	if f.rdLock == nil {
		return nopLocker{}
	}
	return f.rdLock
}

// Depth returns the capacity in items.
func (f *FIFO) Depth() uint16 { return f.depth }

// ItemSize returns the width of one item in bytes.
func (f *FIFO) ItemSize() uint16 { return f.itemSize }

// Overwritable reports whether writes discard the oldest data when full.
func (f *FIFO) Overwritable() bool { return f.overwritable.Load() }

// SetOverwritable changes the overwrite policy.
func (f *FIFO) SetOverwritable(overwritable bool) {
	wl, rl := f.writeLock(), f.readLock()
	wl.Lock()
	defer wl.Unlock()
	rl.Lock()
	defer rl.Unlock()

	f.overwritable.Store(overwritable)
}

// Clear empties the FIFO without changing its buffer, depth or item size.
func (f *FIFO) Clear() {
	wl, rl := f.writeLock(), f.readLock()
	wl.Lock()
	defer wl.Unlock()
	rl.Lock()
	defer rl.Unlock()

	if f.depth == 0 {
		return
	}
	f.resetIndices()
}

// Count returns the number of items stored, at most depth.
//
// Count reads each cursor once and needs no lock, so while both sides are
// running the result is a snapshot that may already be stale. An overflowed
// FIFO reports depth; the read cursor is repaired by the next read.
func (f *FIFO) Count() uint16 {
	r := f.loadRd()
	return min(f.count(f.loadWr(), r), f.depth)
}

// Empty reports whether the FIFO holds no items.
func (f *FIFO) Empty() bool {
	return f.loadWr() == f.loadRd()
}

// Full reports whether the FIFO holds exactly depth items.
func (f *FIFO) Full() bool {
	return f.depth != 0 && f.count(f.loadWr(), f.loadRd()) == f.depth
}

// Remaining returns the number of items that can be written before the FIFO
// is full.
func (f *FIFO) Remaining() uint16 {
	return f.depth - f.Count()
}

// Overflowed reports whether the writer has run more than depth items ahead
// of the reader.
//
// The answer is only meaningful while the writer is less than two laps ahead,
// that is, no more than 2*depth-1 unread items were written. The write
// methods cannot cause an overflow in non-overwritable mode; raw cursor moves
// through [DMA] can.
func (f *FIFO) Overflowed() bool {
	return f.count(f.loadWr(), f.loadRd()) > f.depth
}

// CorrectReadPointer discards the stale lap of an overflowed FIFO so that the
// read cursor sits depth items behind the write cursor. It has no effect on
// a FIFO that has not overflowed.
func (f *FIFO) CorrectReadPointer() {
	rl := f.readLock()
	rl.Lock()
	defer rl.Unlock()

	f.correctedCursors()
}

// correctedCursors loads both cursors and repairs an overflowed read cursor.
// It returns the cursors and the occupied count, at most depth.
// Callers hold the read lock.
func (f *FIFO) correctedCursors() (w, r, cnt uint16) {
	w, r = f.loadWr(), f.loadRd()
	cnt = f.count(w, r)
	if cnt > f.depth {
		lost := cnt - f.depth
		r = f.backward(w, f.depth)
		f.storeRd(r)
		cnt = f.depth
		f.stats.corrections.Add(1)
		f.stats.overwritten.Add(uint64(lost))
		pkg.LogDebug(pkg.ComponentFIFO, "read pointer corrected",
			"depth", f.depth, "discarded", lost)
	}
	return w, r, cnt
}

// Stats is a snapshot of the FIFO's running totals.
type Stats struct {
	Written     uint64 // Items accepted by writes or write-cursor advances
	Read        uint64 // Items consumed by reads or read-cursor advances
	Dropped     uint64 // Items rejected because the FIFO was full
	Overwritten uint64 // Unread items discarded by overwrites or overflow correction
	Corrections uint64 // Times the read cursor was repaired after an overflow
}

type counters struct {
	written     atomic.Uint64
	read        atomic.Uint64
	dropped     atomic.Uint64
	overwritten atomic.Uint64
	corrections atomic.Uint64
}

// Stats returns the running totals. It is safe to call from any goroutine.
func (f *FIFO) Stats() Stats {
	return Stats{
		Written:     f.stats.written.Load(),
		Read:        f.stats.read.Load(),
		Dropped:     f.stats.dropped.Load(),
		Overwritten: f.stats.overwritten.Load(),
		Corrections: f.stats.corrections.Load(),
	}
}
