package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// User is a registered account; Email is the contact address winner
// notifications go to.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UserRepository interface {
	// Upsert creates the user or refreshes the display name when the
	// email already exists.
	Upsert(ctx context.Context, email string, displayName *string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
