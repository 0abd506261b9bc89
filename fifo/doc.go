// Package fifo implements a fixed-capacity circular queue of fixed-size items
// over caller-owned storage, intended for handing data between interrupt or
// DMA driven hardware and software in a USB device stack.
//
// # Cursor Space
//
// The FIFO keeps absolute read and write cursors in a 16-bit index space of
// 2*depth positions instead of depth. The difference of the two cursors is
// then unambiguous even when one has wrapped and the other has not:
//
//	depth = 4, max cursor = 7
//
//	rd=6 wr=1  ->  count = (1-6) - (0xFFFF-7) = 3
//
// The unused part of the 16-bit range (0xFFFF - (2*depth-1) positions) is
// skipped on every wrap so that unsigned wraparound lands exactly where a
// wrap at 2*depth would. This limits depth to 2^15 items and lets the FIFO
// detect a producer that ran up to one full lap ahead of the consumer, which
// can only happen when a DMA engine advances the write cursor directly.
//
// # Overflow
//
// [FIFO.Overflowed] reports a count greater than depth. Every read and peek
// repairs such a state first by moving the read cursor to depth items behind
// the write cursor, discarding the stale lap. A producer must never get more
// than 2*depth-1 items ahead of the consumer; beyond that the cursors cannot
// be told apart and the FIFO contents are undefined.
//
// # Copy Modes
//
// Items move between the ring and a linear slice with ordinary copies, or
// between the ring and a constant-address [Register] such as a peripheral
// packet FIFO. Register transfers are performed one 32-bit word at a time in
// little-endian byte order; trailing bytes are packed into a final
// zero-padded word, and a word that straddles the end of the ring is split
// across the wrap.
//
// # Concurrency
//
// One producer and one consumer may run concurrently without any shared
// lock. Optional per-side [sync.Locker]s ([WithWriteLock], [WithReadLock])
// serialize multiple callers on the same side. Without them each side is
// assumed to be driven from a single context.
//
// # DMA
//
// Zero-copy windows and unchecked cursor moves are available only through a
// [DMA] handle obtained with [FIFO.ClaimDMA]. The handle is meant to be held
// by the one interrupt context that owns the transfer.
//
//	buf := make([]byte, 64*4)
//	f, err := fifo.New(buf, 64, 4, false)
//	if err != nil {
//	    return err
//	}
//	f.Write([]byte{1, 2, 3, 4})
//
//	item := make([]byte, 4)
//	f.Read(item)
package fifo
