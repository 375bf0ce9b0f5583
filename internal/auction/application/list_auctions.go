package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"auctionhouse/internal/auction/domain"
)

// AuctionView is the read DTO exposed to HTTP and websocket clients.
// State and SecondsRemaining are derived from one reference time so a
// single response can never disagree with itself.
type AuctionView struct {
	ID               uuid.UUID             `json:"id"`
	OwnerID          uuid.UUID             `json:"ownerId"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	ImageURL         *string               `json:"imageUrl"`
	StartTime        time.Time             `json:"startTime"`
	EndTime          time.Time             `json:"endTime"`
	Status           domain.Status         `json:"status"`
	State            domain.LifecycleState `json:"state"`
	CurrentBid       *decimal.Decimal      `json:"currentBid"`
	HighestBidderID  *uuid.UUID            `json:"highestBidderId"`
	SecondsRemaining int64                 `json:"secondsRemaining"`
}

func newAuctionView(a *domain.Auction, topAmount *decimal.Decimal, topBidder *uuid.UUID, now time.Time) AuctionView {
	state, remaining := domain.DeriveState(a.Status, a.StartTime, a.EndTime, now)
	return AuctionView{
		ID:               a.ID,
		OwnerID:          a.OwnerID,
		Title:            a.Title,
		Description:      a.Description,
		ImageURL:         a.ImageURL,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Status:           a.Status,
		State:            state,
		CurrentBid:       topAmount,
		HighestBidderID:  topBidder,
		SecondsRemaining: remaining,
	}
}

// ListAuctionsUseCase returns auctions matching a filter, each with
// derived state and its current top bid. Read-only, no locking.
type ListAuctionsUseCase struct {
	store domain.Store
	clock domain.Clock
}

func NewListAuctionsUseCase(store domain.Store, clock domain.Clock) *ListAuctionsUseCase {
	return &ListAuctionsUseCase{store: store, clock: clock}
}

func (uc *ListAuctionsUseCase) Execute(ctx context.Context, filter domain.ListFilter) ([]AuctionView, error) {
	now := uc.clock.Now()
	rows, err := uc.store.ListAuctions(ctx, filter, now)
	if err != nil {
		return nil, err
	}

	views := make([]AuctionView, 0, len(rows))
	for _, row := range rows {
		a := row.Auction
		views = append(views, newAuctionView(&a, row.TopAmount, row.TopBidderID, now))
	}
	return views, nil
}

// GetAuctionUseCase returns the detail view of one auction.
type GetAuctionUseCase struct {
	store domain.Store
	clock domain.Clock
}

func NewGetAuctionUseCase(store domain.Store, clock domain.Clock) *GetAuctionUseCase {
	return &GetAuctionUseCase{store: store, clock: clock}
}

func (uc *GetAuctionUseCase) Execute(ctx context.Context, id uuid.UUID) (*AuctionView, error) {
	auction, err := uc.store.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		topAmount *decimal.Decimal
		topBidder *uuid.UUID
	)
	if top, err := uc.store.TopBid(ctx, id); err != nil {
		return nil, err
	} else if top != nil {
		topAmount = &top.Amount
		topBidder = &top.BidderID
	}

	view := newAuctionView(auction, topAmount, topBidder, uc.clock.Now())
	return &view, nil
}
