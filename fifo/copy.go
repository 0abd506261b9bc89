package fifo

import "encoding/binary"

// Register is a constant-address, 32-bit wide data port such as the packet
// FIFO register of a USB peripheral. Every Get consumes the next word from
// the port and every Set pushes one word into it.
//
// TinyGo's *volatile.Register32 satisfies Register.
type Register interface {
	Get() uint32
	Set(value uint32)
}

// copyMode selects how items move between the ring and the caller.
type copyMode uint8

const (
	copyInc   copyMode = iota // linear slice, incrementing address
	copyConst                 // constant-address Register, full words
)

// span returns the ring bytes holding n items starting at slot rel. When the
// items cross the end of the buffer, tail holds the wrapped part.
func (f *FIFO) span(rel, n uint16) (head, tail []byte) {
	size := int(f.itemSize)
	start := int(rel) * size
	if lin := f.depth - rel; n > lin {
		return f.buf[start:], f.buf[:int(n-lin)*size]
	}
	return f.buf[start : start+int(n)*size], nil
}

// pushN stores n items at slot rel without moving the write cursor. In
// copyInc mode the items come from data; in copyConst mode from reg, after
// discarding skip leading bytes of the register stream.
func (f *FIFO) pushN(mode copyMode, data []byte, reg Register, skip int, n, rel uint16) {
	head, tail := f.span(rel, n)
	switch mode {
	case copyInc:
		k := copy(head, data)
		copy(tail, data[k:])
	case copyConst:
		src := wordReader{reg: reg, off: wordSize}
		src.discard(skip)
		src.read(head)
		src.read(tail)
	}
}

// pullN copies n items from slot rel without moving the read cursor.
func (f *FIFO) pullN(mode copyMode, data []byte, reg Register, n, rel uint16) {
	head, tail := f.span(rel, n)
	switch mode {
	case copyInc:
		k := copy(data, head)
		copy(data[k:], tail)
	case copyConst:
		dst := wordWriter{reg: reg}
		dst.write(head)
		dst.write(tail)
		dst.flush()
	}
}

const wordSize = 4

// wordReader drains a Register as a byte stream. Whole words go straight to
// the destination; a word only partly needed is kept so its remaining bytes
// continue the next read, which is how a word straddling the ring's wrap
// point is split.
type wordReader struct {
	reg  Register
	word [wordSize]byte
	off  int // next unread byte of word, wordSize when empty
}

func (r *wordReader) read(dst []byte) {
	for r.off < wordSize && len(dst) > 0 {
		dst[0] = r.word[r.off]
		dst = dst[1:]
		r.off++
	}
	for len(dst) >= wordSize {
		binary.LittleEndian.PutUint32(dst, r.reg.Get())
		dst = dst[wordSize:]
	}
	if len(dst) > 0 {
		binary.LittleEndian.PutUint32(r.word[:], r.reg.Get())
		r.off = copy(dst, r.word[:])
	}
}

// discard consumes n bytes of the stream.
func (r *wordReader) discard(n int) {
	for r.off < wordSize && n > 0 {
		r.off++
		n--
	}
	for ; n >= wordSize; n -= wordSize {
		r.reg.Get()
	}
	if n > 0 {
		binary.LittleEndian.PutUint32(r.word[:], r.reg.Get())
		r.off = n
	}
}

// wordWriter packs bytes into words for a Register. Bytes that do not fill a
// word wait for the next write; flush pushes them zero-padded.
type wordWriter struct {
	reg  Register
	word [wordSize]byte
	n    int
}

func (w *wordWriter) write(src []byte) {
	if w.n > 0 {
		k := copy(w.word[w.n:], src)
		w.n += k
		src = src[k:]
		if w.n < wordSize {
			return
		}
		w.reg.Set(binary.LittleEndian.Uint32(w.word[:]))
		w.n = 0
	}
	for len(src) >= wordSize {
		w.reg.Set(binary.LittleEndian.Uint32(src))
		src = src[wordSize:]
	}
	w.n = copy(w.word[:], src)
}

func (w *wordWriter) flush() {
	if w.n == 0 {
		return
	}
	clear(w.word[w.n:])
	w.reg.Set(binary.LittleEndian.Uint32(w.word[:]))
	w.n = 0
}
