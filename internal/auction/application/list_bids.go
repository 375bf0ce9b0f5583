package application

import (
	"context"

	"github.com/google/uuid"

	"auctionhouse/internal/auction/domain"
)

// ListBidsUseCase returns an auction's full bid history in commit
// order. Bids are never deleted, so this is the audit trail for open
// and closed auctions alike.
type ListBidsUseCase struct {
	store domain.Store
}

func NewListBidsUseCase(store domain.Store) *ListBidsUseCase {
	return &ListBidsUseCase{store: store}
}

func (uc *ListBidsUseCase) Execute(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	if _, err := uc.store.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	return uc.store.BidsForAuction(ctx, auctionID)
}
