package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock supplies the reference time for every window decision.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ListFilter selects which auctions a listing returns.
type ListFilter string

const (
	FilterActive ListFilter = "active"
	FilterClosed ListFilter = "closed"
)

// ListedAuction is an auction row together with its current top bid,
// computed at read time.
type ListedAuction struct {
	Auction     Auction
	TopAmount   *decimal.Decimal
	TopBidderID *uuid.UUID
}

// Store is durable auction state. Mutations go through WithinTx; the
// remaining methods are lock-free reads.
type Store interface {
	// WithinTx runs fn inside one transaction, committing when fn
	// returns nil and rolling back otherwise. Locks taken by fn are
	// held until the transaction finishes.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	GetAuction(ctx context.Context, id uuid.UUID) (*Auction, error)
	ListAuctions(ctx context.Context, filter ListFilter, now time.Time) ([]ListedAuction, error)
	InsertAuction(ctx context.Context, a *Auction) error
	TopBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
	BidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
}

// Tx is the transactional surface of the store. LockAuction blocks on
// a contended row; ClaimExpired skips contended rows instead.
type Tx interface {
	// LockAuction reads one auction under a row lock held until the
	// transaction ends. Returns ErrAuctionNotFound for unknown ids.
	LockAuction(ctx context.Context, id uuid.UUID) (*Auction, error)
	// ClaimExpired locks up to limit auctions whose window elapsed at
	// now and which are still OPEN, ordered by end time ascending,
	// skipping rows already locked by a concurrent claimer.
	ClaimExpired(ctx context.Context, now time.Time, limit int) ([]*Auction, error)
	// TopBid returns the highest-amount bid, or nil when none exists.
	TopBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
	InsertBid(ctx context.Context, b *Bid) error
	MarkClosed(ctx context.Context, auctionID uuid.UUID) error
}

// Broadcaster fans domain events out to auction subscribers and
// delivers targeted events to single users. Delivery is best-effort; a
// user with no live connection simply misses the event.
type Broadcaster interface {
	BroadcastNewBid(auctionID uuid.UUID, ev NewBidEvent)
	NotifyOutbid(userID uuid.UUID, ev OutbidEvent)
	BroadcastAuctionClosed(auctionID uuid.UUID, ev AuctionClosedEvent)
}

// Notifier delivers a winner notification, fire-and-forget.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// UserDirectory resolves a user's contact address.
type UserDirectory interface {
	EmailByID(ctx context.Context, id uuid.UUID) (string, error)
}
