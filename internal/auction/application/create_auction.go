package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"auctionhouse/internal/auction/domain"
)

// CreateAuctionInput carries the listing request.
type CreateAuctionInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	ImageURL    *string
	StartTime   time.Time
	EndTime     time.Time
}

// CreateAuctionUseCase validates a listing and persists it OPEN.
type CreateAuctionUseCase struct {
	store domain.Store
	clock domain.Clock
}

func NewCreateAuctionUseCase(store domain.Store, clock domain.Clock) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{store: store, clock: clock}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, in CreateAuctionInput) (*AuctionView, error) {
	auction, err := domain.NewAuction(in.OwnerID, in.Title, in.Description, in.ImageURL, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	if err := uc.store.InsertAuction(ctx, auction); err != nil {
		log.Error("Failed to insert auction",
			zap.String("ownerID", in.OwnerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	log.Info("Auction created",
		zap.String("auctionID", auction.ID.String()),
		zap.String("ownerID", auction.OwnerID.String()),
		zap.Time("startTime", auction.StartTime),
		zap.Time("endTime", auction.EndTime),
	)

	view := newAuctionView(auction, nil, nil, uc.clock.Now())
	return &view, nil
}
