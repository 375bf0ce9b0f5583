package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auctionhouse/internal/auction/domain"
)

// AuctionService is the application interface of the auction module,
// exposed to the HTTP, websocket and scheduler layers.
type AuctionService interface {
	PlaceBid(ctx context.Context, in PlaceBidInput) (*domain.Bid, error)
	CreateAuction(ctx context.Context, in CreateAuctionInput) (*AuctionView, error)
	ListAuctions(ctx context.Context, filter domain.ListFilter) ([]AuctionView, error)
	GetAuction(ctx context.Context, id uuid.UUID) (*AuctionView, error)
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error)
	CloseExpiredAuctions(ctx context.Context, batchSize int, now time.Time) (int, error)
}

type auctionService struct {
	placeBidUC      *PlaceBidUseCase
	createAuctionUC *CreateAuctionUseCase
	listAuctionsUC  *ListAuctionsUseCase
	getAuctionUC    *GetAuctionUseCase
	listBidsUC      *ListBidsUseCase
	closeExpiredUC  *CloseExpiredUseCase
}

func NewAuctionService(
	placeBidUC *PlaceBidUseCase,
	createAuctionUC *CreateAuctionUseCase,
	listAuctionsUC *ListAuctionsUseCase,
	getAuctionUC *GetAuctionUseCase,
	listBidsUC *ListBidsUseCase,
	closeExpiredUC *CloseExpiredUseCase,
) AuctionService {
	return &auctionService{
		placeBidUC:      placeBidUC,
		createAuctionUC: createAuctionUC,
		listAuctionsUC:  listAuctionsUC,
		getAuctionUC:    getAuctionUC,
		listBidsUC:      listBidsUC,
		closeExpiredUC:  closeExpiredUC,
	}
}

func (s *auctionService) PlaceBid(ctx context.Context, in PlaceBidInput) (*domain.Bid, error) {
	return s.placeBidUC.Execute(ctx, in)
}

func (s *auctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (*AuctionView, error) {
	return s.createAuctionUC.Execute(ctx, in)
}

func (s *auctionService) ListAuctions(ctx context.Context, filter domain.ListFilter) ([]AuctionView, error) {
	return s.listAuctionsUC.Execute(ctx, filter)
}

func (s *auctionService) GetAuction(ctx context.Context, id uuid.UUID) (*AuctionView, error) {
	return s.getAuctionUC.Execute(ctx, id)
}

func (s *auctionService) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	return s.listBidsUC.Execute(ctx, auctionID)
}

func (s *auctionService) CloseExpiredAuctions(ctx context.Context, batchSize int, now time.Time) (int, error) {
	return s.closeExpiredUC.Execute(ctx, batchSize, now)
}
