package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation        = errors.New("invalid input")
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrAuctionNotStarted = errors.New("auction has not started yet")
	ErrAuctionEnded      = errors.New("auction ended")
	ErrOwnerBid          = errors.New("cannot bid on your own item")
	ErrInvalidAmount     = errors.New("bid amount must be positive")
)

// BidTooLowError rejects a bid below the current minimum. The minimum
// is carried so callers can tell the bidder the exact amount required.
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be at least %s", e.Minimum)
}

// TransientError wraps store-level failures (lock timeout,
// connectivity, commit) that the caller may retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
