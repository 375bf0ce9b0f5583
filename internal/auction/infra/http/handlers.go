package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"auctionhouse/internal/auction/application"
	"auctionhouse/internal/auction/domain"
)

// AuctionHandler maps the auction service onto HTTP routes.
type AuctionHandler struct {
	svc application.AuctionService
}

func NewAuctionHandler(svc application.AuctionService) *AuctionHandler {
	return &AuctionHandler{svc: svc}
}

func (h *AuctionHandler) Register(app *fiber.App) {
	app.Post("/auctions", h.createAuction)
	app.Get("/auctions", h.listAuctions)
	app.Get("/auctions/:id", h.getAuction)
	app.Get("/auctions/:id/bids", h.listBids)
	app.Post("/auctions/:id/bids", h.placeBid)
}

type createAuctionRequest struct {
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

func (h *AuctionHandler) createAuction(c *fiber.Ctx) error {
	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.OwnerID == uuid.Nil {
		return errorResponse(c, fiber.StatusBadRequest, "ownerId is required")
	}

	view, err := h.svc.CreateAuction(c.Context(), application.CreateAuctionInput{
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *AuctionHandler) listAuctions(c *fiber.Ctx) error {
	filter := domain.ListFilter(c.Query("status", string(domain.FilterActive)))
	if filter != domain.FilterActive && filter != domain.FilterClosed {
		return errorResponse(c, fiber.StatusBadRequest, "status must be active or closed")
	}

	views, err := h.svc.ListAuctions(c.Context(), filter)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(views)
}

func (h *AuctionHandler) getAuction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid auction id")
	}

	view, err := h.svc.GetAuction(c.Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(view)
}

func (h *AuctionHandler) listBids(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid auction id")
	}

	bids, err := h.svc.ListBids(c.Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	if bids == nil {
		bids = []*domain.Bid{}
	}
	return c.JSON(bids)
}

type placeBidRequest struct {
	BidderID uuid.UUID       `json:"bidderId"`
	Amount   decimal.Decimal `json:"amount"`
}

type placeBidResponse struct {
	Success bool        `json:"success"`
	Bid     *domain.Bid `json:"bid"`
}

func (h *AuctionHandler) placeBid(c *fiber.Ctx) error {
	auctionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid auction id")
	}

	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.BidderID == uuid.Nil {
		return errorResponse(c, fiber.StatusBadRequest, "bidderId is required")
	}

	bid, err := h.svc.PlaceBid(c.Context(), application.PlaceBidInput{
		AuctionID: auctionID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(placeBidResponse{Success: true, Bid: bid})
}

// domainError translates the domain error taxonomy to HTTP statuses.
// BidTooLow responses keep the exact minimum in the message.
func domainError(c *fiber.Ctx, err error) error {
	var (
		tooLow    *domain.BidTooLowError
		transient *domain.TransientError
	)
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return errorResponse(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &tooLow),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAuctionNotStarted),
		errors.Is(err, domain.ErrAuctionEnded),
		errors.Is(err, domain.ErrOwnerBid):
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &transient):
		return errorResponse(c, fiber.StatusServiceUnavailable, "store temporarily unavailable, retry")
	default:
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
