package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event names carried on the wire to auction subscribers.
const (
	EventNewBid        = "NEW_BID"
	EventOutbid        = "OUTBID"
	EventAuctionClosed = "AUCTION_CLOSED"
)

// NewBidEvent goes to every subscriber of the auction's topic.
type NewBidEvent struct {
	Bid *Bid `json:"bid"`
}

// OutbidEvent goes only to the bidder who just lost the top spot.
type OutbidEvent struct {
	AuctionID          uuid.UUID       `json:"auctionId"`
	NewAmount          decimal.Decimal `json:"newAmount"`
	YourPreviousAmount decimal.Decimal `json:"yourPreviousAmount"`
	Message            string          `json:"message"`
}

// AuctionClosedEvent announces the final outcome to the auction's
// topic. WinnerID and FinalAmount are null when no bids were placed.
type AuctionClosedEvent struct {
	AuctionID   uuid.UUID        `json:"auctionId"`
	Title       string           `json:"title"`
	WinnerID    *uuid.UUID       `json:"winnerId"`
	FinalAmount *decimal.Decimal `json:"finalAmount"`
	ClosedAt    time.Time        `json:"closedAt"`
	Message     string           `json:"message"`
}
