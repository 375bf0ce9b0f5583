package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"auctionhouse/internal/auction/domain"
)

func TestListBidsReturnsHistoryInCommitOrder(t *testing.T) {
	store := newMemStore()
	auction := openAuction(uuid.New(), t0, t0.Add(60*time.Second))
	store.addAuction(auction)

	amounts := []int64{5, 7, 12}
	for i, amount := range amounts {
		err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
			bid := domain.NewBid(auction.ID, uuid.New(), decimal.NewFromInt(amount), t0.Add(time.Duration(i)*time.Second))
			return tx.InsertBid(context.Background(), bid)
		})
		require.NoError(t, err)
	}

	uc := NewListBidsUseCase(store)

	bids, err := uc.Execute(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Len(t, bids, len(amounts))
	for i, bid := range bids {
		require.True(t, bid.Amount.Equal(decimal.NewFromInt(amounts[i])))
	}
}

func TestListBidsUnknownAuction(t *testing.T) {
	uc := NewListBidsUseCase(newMemStore())

	_, err := uc.Execute(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestListBidsEmptyForAuctionWithoutBids(t *testing.T) {
	store := newMemStore()
	auction := openAuction(uuid.New(), t0, t0.Add(60*time.Second))
	store.addAuction(auction)

	uc := NewListBidsUseCase(store)

	bids, err := uc.Execute(context.Background(), auction.ID)
	require.NoError(t, err)
	require.Empty(t, bids)
}
