package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// MinimumFirstBid is the lowest acceptable opening bid.
	MinimumFirstBid = decimal.NewFromInt(5)
	// MinimumIncrement is the required step over the current top bid.
	MinimumIncrement = decimal.NewFromInt(1)
)

// Bid is a monetary offer from a bidder against one auction. Bids are
// never deleted; they remain as the audit trail after closing.
type Bid struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auctionId"`
	BidderID  uuid.UUID       `json:"bidderId"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewBid creates a bid stamped with the acceptance time.
func NewBid(auctionID, bidderID uuid.UUID, amount decimal.Decimal, at time.Time) *Bid {
	return &Bid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: at,
	}
}

// NextMinimum returns the lowest acceptable amount given the current
// top bid, or the opening minimum when no bid exists yet.
func NextMinimum(top *Bid) decimal.Decimal {
	if top == nil {
		return MinimumFirstBid
	}
	return top.Amount.Add(MinimumIncrement)
}
