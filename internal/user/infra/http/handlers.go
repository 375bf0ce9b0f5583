package http

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"auctionhouse/internal/user/domain"
)

// UserHandler exposes the registration/upsert flow.
type UserHandler struct {
	repo domain.UserRepository
}

func NewUserHandler(repo domain.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

func (h *UserHandler) Register(app *fiber.App) {
	app.Post("/users", h.upsertUser)
}

type upsertUserRequest struct {
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

func (h *UserHandler) upsertUser(c *fiber.Ctx) error {
	var req upsertUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email address"})
	}
	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if trimmed == "" || len(trimmed) > 80 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "displayName must be 1-80 characters"})
		}
		req.DisplayName = &trimmed
	}

	user, err := h.repo.Upsert(c.Context(), req.Email, req.DisplayName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
