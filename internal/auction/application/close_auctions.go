package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"auctionhouse/internal/auction/domain"
)

const (
	msgClosedWithWinner = "Auction finished. Winner has been notified."
	msgClosedNoBids     = "Auction finished with no bids."
)

type closedAuction struct {
	auction *domain.Auction
	winning *domain.Bid
}

// CloseExpiredUseCase claims expired-but-open auctions in batches,
// determines each winner and marks the auction closed, all inside one
// transaction per batch. Announcements and winner notifications run
// after commit and can neither block nor undo a close.
type CloseExpiredUseCase struct {
	store       domain.Store
	broadcaster domain.Broadcaster
	notifier    domain.Notifier
	users       domain.UserDirectory
}

func NewCloseExpiredUseCase(store domain.Store, broadcaster domain.Broadcaster, notifier domain.Notifier, users domain.UserDirectory) *CloseExpiredUseCase {
	return &CloseExpiredUseCase{
		store:       store,
		broadcaster: broadcaster,
		notifier:    notifier,
		users:       users,
	}
}

// Execute closes up to batchSize auctions whose window elapsed at now
// and returns how many it closed. On any failure the whole batch rolls
// back; the auctions stay open and the next tick retries them.
func (uc *CloseExpiredUseCase) Execute(ctx context.Context, batchSize int, now time.Time) (int, error) {
	var closed []closedAuction

	err := uc.store.WithinTx(ctx, func(tx domain.Tx) error {
		auctions, err := tx.ClaimExpired(ctx, now, batchSize)
		if err != nil {
			return err
		}
		for _, a := range auctions {
			top, err := tx.TopBid(ctx, a.ID)
			if err != nil {
				return err
			}
			if err := tx.MarkClosed(ctx, a.ID); err != nil {
				return err
			}
			a.Status = domain.StatusClosed
			closed = append(closed, closedAuction{auction: a, winning: top})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, c := range closed {
		uc.announce(ctx, c, now)
	}
	if len(closed) > 0 {
		log.Info("Closed expired auctions", zap.Int("count", len(closed)))
	}
	return len(closed), nil
}

// announce emits AUCTION_CLOSED and makes at most one notification
// attempt for the winner. Lookup or send failures are logged and
// swallowed; the close already committed.
func (uc *CloseExpiredUseCase) announce(ctx context.Context, c closedAuction, closedAt time.Time) {
	ev := domain.AuctionClosedEvent{
		AuctionID: c.auction.ID,
		Title:     c.auction.Title,
		ClosedAt:  closedAt,
		Message:   msgClosedNoBids,
	}
	if c.winning != nil {
		winnerID := c.winning.BidderID
		amount := c.winning.Amount
		ev.WinnerID = &winnerID
		ev.FinalAmount = &amount
		ev.Message = msgClosedWithWinner
	}

	uc.broadcaster.BroadcastAuctionClosed(c.auction.ID, ev)

	if c.winning == nil {
		return
	}

	email, err := uc.users.EmailByID(ctx, c.winning.BidderID)
	if err != nil {
		log.Warn("Unable to resolve winner email",
			zap.String("auctionID", c.auction.ID.String()),
			zap.String("winnerID", c.winning.BidderID.String()),
			zap.Error(err),
		)
		return
	}

	subject := fmt.Sprintf("You won the auction: %s", c.auction.Title)
	body := fmt.Sprintf(
		"Congratulations! You won %q for %s. Our team will reach out with the next steps shortly.",
		c.auction.Title, c.winning.Amount,
	)
	if err := uc.notifier.Send(ctx, email, subject, body); err != nil {
		log.Error("Failed to send winner notification",
			zap.String("auctionID", c.auction.ID.String()),
			zap.String("winnerID", c.winning.BidderID.String()),
			zap.Error(err),
		)
	}
}
