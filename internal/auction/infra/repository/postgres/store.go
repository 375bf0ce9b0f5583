package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"auctionhouse/internal/auction/domain"
)

const auctionColumns = `id, owner_id, title, description, image_url, start_time, end_time, status, created_at`

// Store implements domain.Store on top of a pgx pool. Row-level
// pessimistic locking (FOR UPDATE, FOR UPDATE SKIP LOCKED) is the only
// synchronization primitive it offers.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTx runs fn inside one transaction. It rolls back on error or
// panic and wraps begin/commit failures as TransientError.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &domain.TransientError{Op: "begin transaction", Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(&storeTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.TransientError{Op: "commit transaction", Err: err}
	}
	return nil
}

// GetAuction reads one auction without locking it.
func (s *Store) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id)
	return scanAuction(row)
}

// ListAuctions returns auctions matching the filter, each joined with
// its current top bid. Active auctions sort by soonest ending first,
// closed ones by most recently ended.
func (s *Store) ListAuctions(ctx context.Context, filter domain.ListFilter, now time.Time) ([]domain.ListedAuction, error) {
	const baseSelect = `
        SELECT a.id, a.owner_id, a.title, a.description, a.image_url,
               a.start_time, a.end_time, a.status, a.created_at,
               top_bid.amount, top_bid.bidder_id
        FROM auctions a
        LEFT JOIN LATERAL (
            SELECT bidder_id, amount
            FROM bids
            WHERE auction_id = a.id
            ORDER BY amount DESC
            LIMIT 1
        ) AS top_bid ON TRUE`

	var query string
	switch filter {
	case domain.FilterClosed:
		query = baseSelect + `
        WHERE a.end_time <= $1 OR a.status = 'CLOSED'
        ORDER BY a.end_time DESC`
	default:
		query = baseSelect + `
        WHERE a.start_time <= $1 AND a.end_time > $1 AND a.status <> 'CLOSED'
        ORDER BY a.end_time ASC`
	}

	rows, err := s.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listed []domain.ListedAuction
	for rows.Next() {
		var (
			a         domain.Auction
			topAmount *decimal.Decimal
			topBidder *uuid.UUID
		)
		err := rows.Scan(
			&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.ImageURL,
			&a.StartTime, &a.EndTime, &a.Status, &a.CreatedAt,
			&topAmount, &topBidder,
		)
		if err != nil {
			return nil, err
		}
		listed = append(listed, domain.ListedAuction{
			Auction:     a,
			TopAmount:   topAmount,
			TopBidderID: topBidder,
		})
	}
	return listed, rows.Err()
}

// InsertAuction persists a new listing.
func (s *Store) InsertAuction(ctx context.Context, a *domain.Auction) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO auctions (id, owner_id, title, description, image_url, start_time, end_time, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.OwnerID, a.Title, a.Description, a.ImageURL,
		a.StartTime, a.EndTime, a.Status,
	)
	return err
}

// TopBid returns the highest-amount bid for an auction, nil when none.
func (s *Store) TopBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return queryTopBid(ctx, s.pool, auctionID)
}

// BidsForAuction returns the full bid history in commit order.
func (s *Store) BidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, auction_id, bidder_id, amount, created_at
        FROM bids
        WHERE auction_id = $1
        ORDER BY created_at ASC`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		b := &domain.Bid{}
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// storeTx implements domain.Tx over one pgx transaction.
type storeTx struct {
	tx pgx.Tx
}

// LockAuction reads the auction row under FOR UPDATE. The lock is held
// until the surrounding transaction commits or rolls back, which
// serializes every bid and close targeting this auction.
func (t *storeTx) LockAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1 FOR UPDATE`, id)
	return scanAuction(row)
}

// ClaimExpired locks a batch of expired-but-open auctions with SKIP
// LOCKED, so a row already held by a bidder or another closer instance
// is deferred to the next tick instead of blocking this one.
func (t *storeTx) ClaimExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Auction, error) {
	rows, err := t.tx.Query(ctx, `
        SELECT `+auctionColumns+`
        FROM auctions
        WHERE end_time <= $1 AND status <> 'CLOSED'
        ORDER BY end_time ASC
        FOR UPDATE SKIP LOCKED
        LIMIT $2`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a := &domain.Auction{}
		err := rows.Scan(
			&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.ImageURL,
			&a.StartTime, &a.EndTime, &a.Status, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

func (t *storeTx) TopBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	return queryTopBid(ctx, t.tx, auctionID)
}

func (t *storeTx) InsertBid(ctx context.Context, b *domain.Bid) error {
	_, err := t.tx.Exec(ctx, `
        INSERT INTO bids (id, auction_id, bidder_id, amount, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.AuctionID, b.BidderID, b.Amount, b.CreatedAt,
	)
	return err
}

func (t *storeTx) MarkClosed(ctx context.Context, auctionID uuid.UUID) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE auctions SET status = 'CLOSED' WHERE id = $1`, auctionID)
	return err
}

type queryRunner interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queryTopBid ranks by amount only; the increment rule makes equal top
// amounts unreachable, so no tie-break is defined.
func queryTopBid(ctx context.Context, q queryRunner, auctionID uuid.UUID) (*domain.Bid, error) {
	b := &domain.Bid{}
	err := q.QueryRow(ctx, `
        SELECT id, auction_id, bidder_id, amount, created_at
        FROM bids
        WHERE auction_id = $1
        ORDER BY amount DESC
        LIMIT 1`, auctionID).
		Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.ImageURL,
		&a.StartTime, &a.EndTime, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}
