package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"auctionhouse/internal/auction/domain"
)

// memStore is an in-memory domain.Store. WithinTx holds one mutex for
// the whole transaction, which models the serialization the row lock
// provides, and stages writes so a failed transaction leaves no trace.
type memStore struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*domain.Auction
	bids     map[uuid.UUID][]*domain.Bid

	insertBidErr  error
	markClosedErr error
}

func newMemStore() *memStore {
	return &memStore{
		auctions: make(map[uuid.UUID]*domain.Auction),
		bids:     make(map[uuid.UUID][]*domain.Bid),
	}
}

func (s *memStore) addAuction(a *domain.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.auctions[a.ID] = &cp
}

func (s *memStore) auctionStatus(id uuid.UUID) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auctions[id].Status
}

func (s *memStore) bidAmounts(auctionID uuid.UUID) []decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	amounts := make([]decimal.Decimal, 0, len(s.bids[auctionID]))
	for _, b := range s.bids[auctionID] {
		amounts = append(amounts, b.Amount)
	}
	return amounts
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, b := range tx.stagedBids {
		s.bids[b.AuctionID] = append(s.bids[b.AuctionID], b)
	}
	for _, id := range tx.stagedClosed {
		s.auctions[id].Status = domain.StatusClosed
	}
	return nil
}

func (s *memStore) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) ListAuctions(ctx context.Context, filter domain.ListFilter, now time.Time) ([]domain.ListedAuction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var listed []domain.ListedAuction
	for _, a := range s.auctions {
		closed := a.Status == domain.StatusClosed || !now.Before(a.EndTime)
		switch filter {
		case domain.FilterClosed:
			if !closed {
				continue
			}
		default:
			if closed || now.Before(a.StartTime) {
				continue
			}
		}
		cp := *a
		row := domain.ListedAuction{Auction: cp}
		if top := topBidLocked(s.bids[a.ID], nil); top != nil {
			amount := top.Amount
			bidder := top.BidderID
			row.TopAmount = &amount
			row.TopBidderID = &bidder
		}
		listed = append(listed, row)
	}
	sort.Slice(listed, func(i, j int) bool {
		if filter == domain.FilterClosed {
			return listed[i].Auction.EndTime.After(listed[j].Auction.EndTime)
		}
		return listed[i].Auction.EndTime.Before(listed[j].Auction.EndTime)
	})
	return listed, nil
}

func (s *memStore) InsertAuction(ctx context.Context, a *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

func (s *memStore) TopBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return topBidLocked(s.bids[auctionID], nil), nil
}

func (s *memStore) BidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Bid, len(s.bids[auctionID]))
	copy(out, s.bids[auctionID])
	return out, nil
}

type memTx struct {
	s            *memStore
	stagedBids   []*domain.Bid
	stagedClosed []uuid.UUID
}

func (t *memTx) LockAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	a, ok := t.s.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	cp := *a
	return &cp, nil
}

func (t *memTx) ClaimExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Auction, error) {
	var claimed []*domain.Auction
	for _, a := range t.s.auctions {
		if a.Status != domain.StatusClosed && !now.Before(a.EndTime) {
			cp := *a
			claimed = append(claimed, &cp)
		}
	}
	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].EndTime.Before(claimed[j].EndTime)
	})
	if len(claimed) > limit {
		claimed = claimed[:limit]
	}
	return claimed, nil
}

func (t *memTx) TopBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return topBidLocked(t.s.bids[auctionID], t.stagedBids), nil
}

func (t *memTx) InsertBid(ctx context.Context, b *domain.Bid) error {
	if t.s.insertBidErr != nil {
		return t.s.insertBidErr
	}
	t.stagedBids = append(t.stagedBids, b)
	return nil
}

func (t *memTx) MarkClosed(ctx context.Context, auctionID uuid.UUID) error {
	if t.s.markClosedErr != nil {
		return t.s.markClosedErr
	}
	t.stagedClosed = append(t.stagedClosed, auctionID)
	return nil
}

// topBidLocked returns the highest-amount bid across committed and
// staged bids. Caller holds the store mutex.
func topBidLocked(committed, staged []*domain.Bid) *domain.Bid {
	var top *domain.Bid
	for _, b := range committed {
		if top == nil || b.Amount.GreaterThan(top.Amount) {
			top = b
		}
	}
	for _, b := range staged {
		if top == nil || b.Amount.GreaterThan(top.Amount) {
			top = b
		}
	}
	return top
}

// recordingBroadcaster captures emitted events for assertions.
type recordingBroadcaster struct {
	mu      sync.Mutex
	newBids []domain.NewBidEvent
	outbids []outbidDelivery
	closed  []domain.AuctionClosedEvent
}

type outbidDelivery struct {
	userID uuid.UUID
	event  domain.OutbidEvent
}

func (b *recordingBroadcaster) BroadcastNewBid(auctionID uuid.UUID, ev domain.NewBidEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.newBids = append(b.newBids, ev)
}

func (b *recordingBroadcaster) NotifyOutbid(userID uuid.UUID, ev domain.OutbidEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outbids = append(b.outbids, outbidDelivery{userID: userID, event: ev})
}

func (b *recordingBroadcaster) BroadcastAuctionClosed(auctionID uuid.UUID, ev domain.AuctionClosedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, ev)
}

// stubNotifier records sends and can be forced to fail.
type stubNotifier struct {
	mu    sync.Mutex
	err   error
	sends []sentNotification
}

type sentNotification struct {
	to      string
	subject string
	body    string
}

func (n *stubNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, sentNotification{to: to, subject: subject, body: body})
	return nil
}

// stubDirectory resolves winner emails from a fixed map.
type stubDirectory struct {
	emails map[uuid.UUID]string
	err    error
}

func (d *stubDirectory) EmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	email, ok := d.emails[id]
	if !ok {
		return "", errors.New("no such user")
	}
	return email, nil
}

// fixedClock returns a constant reference time.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

func openAuction(owner uuid.UUID, start, end time.Time) *domain.Auction {
	return &domain.Auction{
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       "Vintage camera",
		Description: "A working Leica M3",
		StartTime:   start,
		EndTime:     end,
		Status:      domain.StatusOpen,
	}
}
