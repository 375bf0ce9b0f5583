package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the stored lifecycle flag of an auction. It moves from
// OPEN to CLOSED exactly once and is never reversed.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

const (
	titleMinLen = 3
	titleMaxLen = 120
)

// Auction is a listed item with an owner and a fixed bidding window.
type Auction struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	ImageURL    *string
	StartTime   time.Time
	EndTime     time.Time
	Status      Status
	CreatedAt   time.Time
}

// NewAuction validates the listing input and returns an OPEN auction.
func NewAuction(ownerID uuid.UUID, title, description string, imageURL *string, startTime, endTime time.Time) (*Auction, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if len(title) < titleMinLen || len(title) > titleMaxLen {
		return nil, fmt.Errorf("%w: title must be between %d and %d characters", ErrValidation, titleMinLen, titleMaxLen)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !endTime.After(startTime) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	return &Auction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		StartTime:   startTime,
		EndTime:     endTime,
		Status:      StatusOpen,
	}, nil
}

// HasStarted reports whether the bidding window has opened at now.
func (a *Auction) HasStarted(now time.Time) bool {
	return !now.Before(a.StartTime)
}

// HasEnded reports whether the bidding window has elapsed at now.
func (a *Auction) HasEnded(now time.Time) bool {
	return !now.Before(a.EndTime)
}

// IsActive reports whether the auction accepts bids at now.
func (a *Auction) IsActive(now time.Time) bool {
	return a.HasStarted(now) && !a.HasEnded(now) && a.Status != StatusClosed
}
