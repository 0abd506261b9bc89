package hal

import (
	"encoding/binary"
	"sync"

	"github.com/ardnew/usbfifo/pkg"
)

// PacketFIFO is a simulated packet FIFO data register.
//
// Received packets are loaded as little-endian words, the last one
// zero-padded, and drained one word per Get. Words written with Set collect
// in the transmit queue until drained with TakeTransmitted.
//
// PacketFIFO is safe for concurrent use.
type PacketFIFO struct {
	mu sync.Mutex
	rx []uint32
	tx []uint32

	gets      uint64
	sets      uint64
	underruns uint64
}

// PacketStats counts register accesses.
type PacketStats struct {
	Gets      uint64 // Words read by the CPU or DMA
	Sets      uint64 // Words written by the CPU or DMA
	Underruns uint64 // Reads of an empty receive queue
}

// NewPacketFIFO returns an empty packet register.
func NewPacketFIFO() *PacketFIFO {
	return &PacketFIFO{}
}

// Load queues a received packet.
func (p *PacketFIFO) Load(packet []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(packet) > 0 {
		var w [4]byte
		n := copy(w[:], packet)
		p.rx = append(p.rx, binary.LittleEndian.Uint32(w[:]))
		packet = packet[n:]
	}
}

// Pending returns the number of received words not yet read.
func (p *PacketFIFO) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rx)
}

// Get pops the next received word. An empty register reads as zero and is
// counted as an underrun.
func (p *PacketFIFO) Get() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gets++
	if len(p.rx) == 0 {
		p.underruns++
		pkg.LogDebug(pkg.ComponentHAL, "packet register read while empty")
		return 0
	}
	v := p.rx[0]
	p.rx = p.rx[1:]
	return v
}

// Set pushes a word into the transmit queue.
func (p *PacketFIFO) Set(value uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sets++
	p.tx = append(p.tx, value)
}

// TakeTransmitted removes the transmit queue and returns its bytes, including
// any padding of the last word.
func (p *PacketFIFO) TakeTransmitted() []byte {
	p.mu.Lock()
	tx := p.tx
	p.tx = nil
	p.mu.Unlock()

	out := make([]byte, 4*len(tx))
	for i, w := range tx {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// Stats returns the access counters.
func (p *PacketFIFO) Stats() PacketStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PacketStats{Gets: p.gets, Sets: p.sets, Underruns: p.underruns}
}

// Reset drops both queues and zeroes the counters.
func (p *PacketFIFO) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rx, p.tx = nil, nil
	p.gets, p.sets, p.underruns = 0, 0, 0
}
