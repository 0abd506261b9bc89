package pkg

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTransferStatus_String(t *testing.T) {
	tests := []struct {
		status TransferStatus
		want   string
	}{
		{TransferStatusSuccess, "success"},
		{TransferStatusError, "error"},
		{TransferStatusTimeout, "timeout"},
		{TransferStatusCancelled, "cancelled"},
		{TransferStatusOverrun, "overrun"},
		{TransferStatusUnderrun, "underrun"},
		{TransferStatus(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransferStatus_Error(t *testing.T) {
	tests := []struct {
		status  TransferStatus
		wantErr error
	}{
		{TransferStatusSuccess, nil},
		{TransferStatusTimeout, ErrTimeout},
		{TransferStatusCancelled, ErrCancelled},
		{TransferStatusOverrun, ErrOverrun},
		{TransferStatusUnderrun, ErrUnderrun},
		{TransferStatusError, ErrTransfer},
		{TransferStatus(42), ErrTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			err := tt.status.Error()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Error() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Error() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigurationErrorsDistinct(t *testing.T) {
	errs := []error{
		ErrDepthTooLarge,
		ErrInvalidDepth,
		ErrInvalidItemSize,
		ErrBufferTooSmall,
		ErrNotConfigured,
		ErrInvalidParameter,
	}
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v unexpectedly matches %v", a, b)
			}
		}
	}
}

func TestStatusFromContext(t *testing.T) {
	if got := StatusFromContext(context.Background()); got != TransferStatusSuccess {
		t.Errorf("live context = %v, want success", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := StatusFromContext(ctx); got != TransferStatusCancelled {
		t.Errorf("cancelled context = %v, want cancelled", got)
	}

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if got := StatusFromContext(ctx); got != TransferStatusTimeout {
		t.Errorf("expired context = %v, want timeout", got)
	}
	if !errors.Is(StatusFromContext(ctx).Error(), ErrTimeout) {
		t.Error("timeout status should map to ErrTimeout")
	}
}
