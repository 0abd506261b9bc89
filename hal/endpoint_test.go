package hal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/usbfifo/pkg"
)

var _ Endpoint = (*LoopbackEndpoint)(nil)

func TestNewLoopbackEndpoint(t *testing.T) {
	_, err := NewLoopbackEndpoint(0, 1)
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)
	_, err = NewLoopbackEndpoint(64, -1)
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)

	ep, err := NewLoopbackEndpoint(64, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(64), ep.MaxPacketSize())
}

func TestLoopbackEndpointRoundTrip(t *testing.T) {
	ep, err := NewLoopbackEndpoint(8, 4)
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("packet!")
	n, err := ep.WritePacket(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	data[0] = 'X'

	_, err = ep.WritePacket(ctx, nil)
	require.NoError(t, err, "zero-length packet")

	_, err = ep.WritePacket(ctx, make([]byte, 9))
	assert.ErrorIs(t, err, pkg.ErrInvalidParameter)

	buf := make([]byte, 8)
	n, err = ep.ReadPacket(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "packet!", string(buf[:n]), "packet is copied on write")

	n, err = ep.ReadPacket(ctx, buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	packets, bytes := ep.Sent()
	assert.Equal(t, uint64(2), packets)
	assert.Equal(t, uint64(7), bytes)
}

func TestLoopbackEndpointBlocking(t *testing.T) {
	ep, err := NewLoopbackEndpoint(8, 1)
	require.NoError(t, err)

	_, err = ep.WritePacket(context.Background(), []byte{1})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = ep.WritePacket(ctx, []byte{2})
	assert.ErrorIs(t, err, pkg.ErrTimeout, "queue full")

	buf := make([]byte, 8)
	_, err = ep.ReadPacket(context.Background(), buf)
	require.NoError(t, err)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	_, err = ep.ReadPacket(ctx, buf)
	assert.ErrorIs(t, err, pkg.ErrCancelled, "queue empty")
}

func TestLoopbackEndpointClose(t *testing.T) {
	ep, err := NewLoopbackEndpoint(8, 2)
	require.NoError(t, err)
	_, err = ep.WritePacket(context.Background(), []byte{1})
	require.NoError(t, err)

	require.NoError(t, ep.Close())
	require.NoError(t, ep.Close())

	_, err = ep.WritePacket(context.Background(), []byte{2})
	assert.ErrorIs(t, err, pkg.ErrNotRunning)

	buf := make([]byte, 8)
	n, err := ep.ReadPacket(context.Background(), buf)
	require.NoError(t, err, "queued packets survive close")
	assert.Equal(t, 1, n)

	_, err = ep.ReadPacket(context.Background(), buf)
	assert.ErrorIs(t, err, pkg.ErrNotRunning)
}
