package stream

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ardnew/usbfifo/fifo"
	"github.com/ardnew/usbfifo/hal"
	"github.com/ardnew/usbfifo/pkg"
)

// Option configures a Stream.
type Option func(*config)

type config struct {
	overwritable bool
}

// WithOverwrite makes writes to a full stream discard the oldest unsent
// bytes instead of stopping.
func WithOverwrite() Option {
	return func(c *config) { c.overwritable = true }
}

// Stream is a byte FIFO in front of an endpoint.
//
// Writers fill it with Write or ReceiveFrom; Flush drains it to the endpoint
// in packets of up to the endpoint's max packet size. Read and TransmitTo
// consume it locally instead. Each side is serialized by its own lock, so a
// writer and a reader or flusher may run concurrently.
type Stream struct {
	f   *fifo.FIFO
	dma *fifo.DMA
	ep  hal.Endpoint

	wr  sync.Mutex
	rd  sync.Mutex
	pkt []byte // bounce buffer for a packet split by the wrap
}

// New returns a stream stored in buf, one byte per item, flushing to ep.
// ep may be nil for a stream that is only read locally.
func New(buf []byte, ep hal.Endpoint, opts ...Option) (*Stream, error) {
	if ep != nil && ep.MaxPacketSize() == 0 {
		return nil, fmt.Errorf("stream endpoint: %w", pkg.ErrInvalidParameter)
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	depth := min(len(buf), fifo.MaxDepth)
	f, err := fifo.New(buf, uint16(depth), 1, cfg.overwritable)
	if err != nil {
		return nil, fmt.Errorf("stream buffer: %w", err)
	}
	d, err := f.ClaimDMA()
	if err != nil {
		return nil, fmt.Errorf("stream buffer: %w", err)
	}

	s := &Stream{f: f, dma: d, ep: ep}
	if ep != nil {
		s.pkt = make([]byte, ep.MaxPacketSize())
	}
	return s, nil
}

// FIFO returns the underlying FIFO.
func (s *Stream) FIFO() *fifo.FIFO { return s.f }

// Buffered returns the number of bytes waiting to be flushed or read.
func (s *Stream) Buffered() int { return int(s.f.Count()) }

// Available returns the number of bytes that can be written without
// flushing.
func (s *Stream) Available() int { return int(s.f.Remaining()) }

// Write buffers p. See WriteContext.
func (s *Stream) Write(p []byte) (int, error) {
	return s.WriteContext(context.Background(), p)
}

// WriteContext buffers p. When the stream fills up, it is flushed to the
// endpoint to make room; a full stream without an endpoint fails with
// [pkg.ErrOverrun]. An overwritable stream never fills up.
func (s *Stream) WriteContext(ctx context.Context, p []byte) (int, error) {
	s.wr.Lock()
	defer s.wr.Unlock()

	written := 0
	for len(p) > 0 {
		room := int(s.f.Depth())
		if !s.f.Overwritable() {
			room = int(s.f.Remaining())
		}
		if room == 0 {
			if s.ep == nil {
				return written, fmt.Errorf("stream write: %w", pkg.ErrOverrun)
			}
			sent, err := s.Flush(ctx)
			if err != nil {
				return written, err
			}
			if sent == 0 {
				return written, fmt.Errorf("stream write: %w", pkg.ErrOverrun)
			}
			continue
		}

		chunk := p[:min(len(p), room)]
		n := int(s.f.WriteN(chunk, uint16(len(chunk))))
		written += n
		p = p[n:]
	}
	return written, nil
}

// ReceiveFrom moves up to n bytes from the packet register reg into the
// stream and returns the number stored.
func (s *Stream) ReceiveFrom(reg fifo.Register, n uint16) uint16 {
	s.wr.Lock()
	defer s.wr.Unlock()
	return s.f.WriteNFromRegister(reg, n)
}

// Read removes up to len(p) buffered bytes into p. Like [bytes.Buffer], it
// returns io.EOF when nothing is buffered.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.rd.Lock()
	defer s.rd.Unlock()

	n := s.f.ReadN(p, uint16(min(len(p), int(s.f.Depth()))))
	if n == 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

// TransmitTo moves up to n buffered bytes into the packet register reg and
// returns the number sent.
func (s *Stream) TransmitTo(reg fifo.Register, n uint16) uint16 {
	s.rd.Lock()
	defer s.rd.Unlock()
	return s.f.ReadNToRegister(reg, n)
}

// Flush sends everything buffered to the endpoint and returns the number of
// bytes sent.
//
// Packets are sent straight out of the FIFO storage. Only a packet that
// would be cut short by the end of the buffer is first gathered into a
// bounce buffer, so that the host sees full-size packets until the last one.
func (s *Stream) Flush(ctx context.Context) (int, error) {
	if s.ep == nil {
		return 0, fmt.Errorf("stream flush: %w", pkg.ErrNotConfigured)
	}
	s.rd.Lock()
	defer s.rd.Unlock()

	mps := uint16(len(s.pkt))
	sent, packets := 0, 0
	for {
		win, n := s.dma.LinearReadInfo(0, mps)
		if n == 0 {
			break
		}
		if n < mps && s.f.Count() > n {
			n = s.f.PeekAtN(0, s.pkt, mps)
			win = s.pkt[:n]
		}

		wrote, err := s.ep.WritePacket(ctx, win)
		s.dma.AdvanceReadPointer(uint16(wrote))
		sent += wrote
		if err != nil {
			return sent, fmt.Errorf("stream flush: %w", err)
		}
		packets++
	}

	if packets > 0 {
		pkg.LogDebug(pkg.ComponentStream, "flushed", "bytes", sent, "packets", packets)
	}
	return sent, nil
}

// Clear drops everything buffered.
func (s *Stream) Clear() {
	s.wr.Lock()
	defer s.wr.Unlock()
	s.rd.Lock()
	defer s.rd.Unlock()
	s.f.Clear()
}

// Close releases the stream's hold on the FIFO. The stream must not be used
// afterwards.
func (s *Stream) Close() error {
	s.rd.Lock()
	defer s.rd.Unlock()
	s.dma.Release()
	return nil
}
