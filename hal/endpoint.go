package hal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ardnew/usbfifo/pkg"
)

// Endpoint is the IN side of a device data endpoint.
type Endpoint interface {
	// MaxPacketSize returns the largest packet the endpoint accepts.
	MaxPacketSize() uint16

	// WritePacket sends one packet of at most MaxPacketSize bytes.
	// Blocks until the packet is accepted or the context is cancelled.
	// Returns the number of bytes written.
	WritePacket(ctx context.Context, data []byte) (int, error)
}

// LoopbackEndpoint is an [Endpoint] that queues written packets for
// [LoopbackEndpoint.ReadPacket], standing in for a host that reads them back.
type LoopbackEndpoint struct {
	maxPacket uint16
	packets   chan []byte

	closeOnce sync.Once
	closeCh   chan struct{}

	sent  atomic.Uint64
	bytes atomic.Uint64
}

// NewLoopbackEndpoint returns an endpoint that accepts packets of up to
// maxPacket bytes and buffers up to queueLen of them.
func NewLoopbackEndpoint(maxPacket uint16, queueLen int) (*LoopbackEndpoint, error) {
	if maxPacket == 0 || queueLen < 0 {
		return nil, pkg.ErrInvalidParameter
	}
	return &LoopbackEndpoint{
		maxPacket: maxPacket,
		packets:   make(chan []byte, queueLen),
		closeCh:   make(chan struct{}),
	}, nil
}

// MaxPacketSize returns the largest accepted packet size.
func (e *LoopbackEndpoint) MaxPacketSize() uint16 { return e.maxPacket }

// WritePacket copies data and queues it.
func (e *LoopbackEndpoint) WritePacket(ctx context.Context, data []byte) (int, error) {
	if len(data) > int(e.maxPacket) {
		return 0, fmt.Errorf("packet of %d bytes exceeds %d: %w",
			len(data), e.maxPacket, pkg.ErrInvalidParameter)
	}
	select {
	case <-e.closeCh:
		return 0, pkg.ErrNotRunning
	default:
	}

	pkt := append([]byte(nil), data...)
	select {
	case e.packets <- pkt:
	case <-e.closeCh:
		return 0, pkg.ErrNotRunning
	case <-ctx.Done():
		return 0, pkg.StatusFromContext(ctx).Error()
	}

	e.sent.Add(1)
	e.bytes.Add(uint64(len(data)))
	pkg.LogDebug(pkg.ComponentHAL, "packet sent", "len", len(data))
	return len(data), nil
}

// ReadPacket removes the oldest queued packet into buf and returns its
// length. Blocks until a packet is available, the endpoint is closed or the
// context is cancelled. A packet longer than buf is truncated.
func (e *LoopbackEndpoint) ReadPacket(ctx context.Context, buf []byte) (int, error) {
	select {
	case pkt := <-e.packets:
		return copy(buf, pkt), nil
	case <-e.closeCh:
		// Drain what was queued before the close.
		select {
		case pkt := <-e.packets:
			return copy(buf, pkt), nil
		default:
			return 0, pkg.ErrNotRunning
		}
	case <-ctx.Done():
		return 0, pkg.StatusFromContext(ctx).Error()
	}
}

// Sent returns the number of packets and bytes accepted.
func (e *LoopbackEndpoint) Sent() (packets, bytes uint64) {
	return e.sent.Load(), e.bytes.Load()
}

// Close stops accepting packets and wakes blocked callers.
func (e *LoopbackEndpoint) Close() error {
	e.closeOnce.Do(func() { close(e.closeCh) })
	return nil
}
