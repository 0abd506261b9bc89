package pkg

import (
	"context"
	"errors"
)

// Configuration errors.
var (
	// ErrDepthTooLarge indicates a depth beyond the 2^15 items the doubled
	// 16-bit cursor space can represent.
	ErrDepthTooLarge = errors.New("depth exceeds 32768 items")

	// ErrInvalidDepth indicates a depth of zero.
	ErrInvalidDepth = errors.New("depth must be at least 1")

	// ErrInvalidItemSize indicates an item size of zero.
	ErrInvalidItemSize = errors.New("item size must be at least 1")

	// ErrBufferTooSmall indicates the backing buffer cannot hold depth items.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrNotConfigured indicates the FIFO has not been configured.
	ErrNotConfigured = errors.New("fifo not configured")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Ownership and lifecycle errors.
var (
	// ErrBusy indicates the resource is owned by another caller.
	ErrBusy = errors.New("resource busy")

	// ErrAlreadyRunning indicates the component is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrNotRunning indicates the component is not running.
	ErrNotRunning = errors.New("not running")
)

// Transfer errors.
var (
	// ErrTimeout indicates a transfer timeout.
	ErrTimeout = errors.New("transfer timeout")

	// ErrCancelled indicates a cancelled transfer.
	ErrCancelled = errors.New("transfer cancelled")

	// ErrOverrun indicates the producer outpaced the FIFO.
	ErrOverrun = errors.New("data overrun")

	// ErrUnderrun indicates the consumer found less data than requested.
	ErrUnderrun = errors.New("data underrun")

	// ErrTransfer indicates a transfer failed for an unspecified reason.
	ErrTransfer = errors.New("transfer failed")
)

// TransferStatus represents the completion status of a DMA or endpoint transfer.
type TransferStatus int

// Transfer status values.
const (
	TransferStatusSuccess   TransferStatus = iota // Transfer completed successfully
	TransferStatusError                           // Transfer failed with error
	TransferStatusTimeout                         // Transfer timed out
	TransferStatusCancelled                       // Transfer was cancelled
	TransferStatusOverrun                         // Data overrun
	TransferStatusUnderrun                        // Data underrun
)

// String returns a string representation of the transfer status.
func (s TransferStatus) String() string {
	switch s {
	case TransferStatusSuccess:
		return "success"
	case TransferStatusError:
		return "error"
	case TransferStatusTimeout:
		return "timeout"
	case TransferStatusCancelled:
		return "cancelled"
	case TransferStatusOverrun:
		return "overrun"
	case TransferStatusUnderrun:
		return "underrun"
	default:
		return "unknown"
	}
}

// Error returns the corresponding error for the transfer status.
func (s TransferStatus) Error() error {
	switch s {
	case TransferStatusSuccess:
		return nil
	case TransferStatusTimeout:
		return ErrTimeout
	case TransferStatusCancelled:
		return ErrCancelled
	case TransferStatusOverrun:
		return ErrOverrun
	case TransferStatusUnderrun:
		return ErrUnderrun
	default:
		return ErrTransfer
	}
}

// StatusFromContext maps the state of ctx to a transfer status. An expired
// deadline is a timeout; any other cancellation is reported as cancelled.
func StatusFromContext(ctx context.Context) TransferStatus {
	switch err := ctx.Err(); {
	case err == nil:
		return TransferStatusSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return TransferStatusTimeout
	default:
		return TransferStatusCancelled
	}
}
