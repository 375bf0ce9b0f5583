package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"auctionhouse/internal/auction/domain"
	"auctionhouse/internal/shared/logger"
)

var log = logger.GetLogger()

// PlaceBidInput carries the data needed to place one bid.
type PlaceBidInput struct {
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
}

// PlaceBidUseCase validates and commits a single bid against the
// current state of one auction, inside one store transaction. The
// auction row stays locked from the first read through commit, so all
// bids against one auction serialize into a strict commit order.
type PlaceBidUseCase struct {
	store       domain.Store
	broadcaster domain.Broadcaster
	clock       domain.Clock
}

func NewPlaceBidUseCase(store domain.Store, broadcaster domain.Broadcaster, clock domain.Clock) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		store:       store,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, in PlaceBidInput) (*domain.Bid, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	var (
		newBid  *domain.Bid
		prevTop *domain.Bid
	)
	err := uc.store.WithinTx(ctx, func(tx domain.Tx) error {
		auction, err := tx.LockAuction(ctx, in.AuctionID)
		if err != nil {
			return err
		}

		now := uc.clock.Now()
		if !auction.HasStarted(now) {
			return domain.ErrAuctionNotStarted
		}
		if auction.Status == domain.StatusClosed || auction.HasEnded(now) {
			return domain.ErrAuctionEnded
		}
		if auction.OwnerID == in.BidderID {
			return domain.ErrOwnerBid
		}

		prevTop, err = tx.TopBid(ctx, in.AuctionID)
		if err != nil {
			return err
		}
		if min := domain.NextMinimum(prevTop); in.Amount.LessThan(min) {
			return &domain.BidTooLowError{Minimum: min}
		}

		newBid = domain.NewBid(in.AuctionID, in.BidderID, in.Amount, now)
		return tx.InsertBid(ctx, newBid)
	})
	if err != nil {
		if isBidRejection(err) {
			log.Warn("Bid rejected",
				zap.String("auctionID", in.AuctionID.String()),
				zap.String("bidderID", in.BidderID.String()),
				zap.String("amount", in.Amount.String()),
				zap.Error(err),
			)
		} else {
			log.Error("Bid transaction failed",
				zap.String("auctionID", in.AuctionID.String()),
				zap.String("bidderID", in.BidderID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	log.Info("Bid placed",
		zap.String("auctionID", in.AuctionID.String()),
		zap.String("bidID", newBid.ID.String()),
		zap.String("bidderID", in.BidderID.String()),
		zap.String("amount", in.Amount.String()),
	)

	// Events go out only after the commit above. A failed transaction
	// never reaches this point.
	uc.broadcaster.BroadcastNewBid(in.AuctionID, domain.NewBidEvent{Bid: newBid})
	if prevTop != nil && prevTop.BidderID != in.BidderID {
		uc.broadcaster.NotifyOutbid(prevTop.BidderID, domain.OutbidEvent{
			AuctionID:          in.AuctionID,
			NewAmount:          newBid.Amount,
			YourPreviousAmount: prevTop.Amount,
			Message:            "You have been outbid",
		})
	}

	return newBid, nil
}

func isBidRejection(err error) bool {
	var tooLow *domain.BidTooLowError
	return errors.Is(err, domain.ErrAuctionNotFound) ||
		errors.Is(err, domain.ErrAuctionNotStarted) ||
		errors.Is(err, domain.ErrAuctionEnded) ||
		errors.Is(err, domain.ErrOwnerBid) ||
		errors.As(err, &tooLow)
}
