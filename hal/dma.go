package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ardnew/usbfifo/fifo"
	"github.com/ardnew/usbfifo/pkg"
)

// Completion is called when a DMA transfer finishes, with the transfer
// status and the number of items moved. It runs on the goroutine that
// started the transfer while the channel is still busy, so it must not call
// [DMAChannel.Close].
type Completion func(status pkg.TransferStatus, n uint16)

// DMAChannel is a simulated DMA engine bound to one FIFO.
//
// The channel holds the FIFO's DMA handle for its whole lifetime, so it is
// the only raw cursor user of that FIFO until [DMAChannel.Close]. One
// transfer runs at a time.
type DMAChannel struct {
	dma        *fifo.DMA
	f          *fifo.FIFO
	onComplete Completion

	mu     sync.Mutex // held for the duration of a transfer
	closed bool

	transfers atomic.Uint64
	items     atomic.Uint64
}

// NewDMAChannel claims the DMA handle of f. onComplete may be nil.
func NewDMAChannel(f *fifo.FIFO, onComplete Completion) (*DMAChannel, error) {
	if f == nil || f.Depth() == 0 {
		return nil, pkg.ErrNotConfigured
	}
	d, err := f.ClaimDMA()
	if err != nil {
		return nil, fmt.Errorf("claim dma: %w", err)
	}
	return &DMAChannel{dma: d, f: f, onComplete: onComplete}, nil
}

// Close releases the DMA handle. Transfers started afterwards fail with
// [pkg.ErrNotRunning].
func (c *DMAChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		c.dma.Release()
	}
	return nil
}

// Transfers returns the number of completed transfers and items moved.
func (c *DMAChannel) Transfers() (transfers, items uint64) {
	return c.transfers.Load(), c.items.Load()
}

func (c *DMAChannel) begin() error {
	if !c.mu.TryLock() {
		return pkg.ErrAlreadyRunning
	}
	if c.closed {
		c.mu.Unlock()
		return pkg.ErrNotRunning
	}
	return nil
}

// Receive moves up to n items from src into the FIFO, as a peripheral-to-
// memory DMA would, and returns the number of items stored.
//
// Bytes are read straight into the FIFO's linear write windows. A source that
// ends early completes the transfer with the whole items it delivered; a
// source that delivers nothing is an underrun. A non-overwritable FIFO with
// no space is an overrun.
func (c *DMAChannel) Receive(ctx context.Context, src io.Reader, n uint16) (uint16, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	defer c.mu.Unlock()

	size := int(c.f.ItemSize())
	var (
		done   uint16
		status = pkg.TransferStatusSuccess
		cause  error
	)
	for done < n {
		if s := pkg.StatusFromContext(ctx); s != pkg.TransferStatusSuccess {
			status = s
			break
		}
		win, k := c.dma.LinearWriteInfo(done, n-done)
		if k == 0 {
			if done == 0 {
				status = pkg.TransferStatusOverrun
			}
			break
		}
		got, err := io.ReadFull(src, win)
		done += uint16(got / size)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				status, cause = pkg.TransferStatusError, err
			} else if done == 0 {
				status = pkg.TransferStatusUnderrun
			}
			break
		}
	}
	c.dma.AdvanceWritePointer(done)
	return done, c.complete("receive", status, cause, done)
}

// Transmit moves up to n items from the FIFO to dst, as a memory-to-
// peripheral DMA would, and returns the number of items sent.
//
// Stored items are written to dst straight from the FIFO's linear read
// windows. Items are released only once dst accepted all of their bytes. An
// empty FIFO is an underrun.
func (c *DMAChannel) Transmit(ctx context.Context, dst io.Writer, n uint16) (uint16, error) {
	if err := c.begin(); err != nil {
		return 0, err
	}
	defer c.mu.Unlock()

	size := int(c.f.ItemSize())
	var (
		done   uint16
		status = pkg.TransferStatusSuccess
		cause  error
	)
	for done < n {
		if s := pkg.StatusFromContext(ctx); s != pkg.TransferStatusSuccess {
			status = s
			break
		}
		win, k := c.dma.LinearReadInfo(done, n-done)
		if k == 0 {
			if done == 0 {
				status = pkg.TransferStatusUnderrun
			}
			break
		}
		wrote, err := dst.Write(win)
		done += uint16(wrote / size)
		if err != nil {
			status, cause = pkg.TransferStatusError, err
			break
		}
	}
	c.dma.AdvanceReadPointer(done)
	return done, c.complete("transmit", status, cause, done)
}

func (c *DMAChannel) complete(op string, status pkg.TransferStatus, cause error, n uint16) error {
	c.transfers.Add(1)
	c.items.Add(uint64(n))
	if c.onComplete != nil {
		c.onComplete(status, n)
	}

	if status == pkg.TransferStatusSuccess {
		pkg.LogDebug(pkg.ComponentDMA, "transfer complete", "op", op, "items", n)
		return nil
	}
	pkg.LogDebug(pkg.ComponentDMA, "transfer ended", "op", op, "status", status, "items", n)
	if cause != nil {
		return fmt.Errorf("dma %s: %w: %w", op, status.Error(), cause)
	}
	return fmt.Errorf("dma %s: %w", op, status.Error())
}
