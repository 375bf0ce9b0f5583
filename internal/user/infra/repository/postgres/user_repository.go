package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auctionhouse/internal/user/domain"
)

// UserRepository implements domain.UserRepository for PostgreSQL. It
// also serves as the auction module's UserDirectory via EmailByID.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Upsert(ctx context.Context, email string, displayName *string) (*domain.User, error) {
	query := `
        INSERT INTO users (email, display_name)
        VALUES ($1, $2)
        ON CONFLICT (email)
        DO UPDATE SET display_name = COALESCE(EXCLUDED.display_name, users.display_name)
        RETURNING id, email, display_name, created_at`

	user := &domain.User{}
	err := r.pool.QueryRow(ctx, query, email, displayName).
		Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, email, display_name, created_at FROM users WHERE id = $1`

	user := &domain.User{}
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// EmailByID resolves the contact address for winner notifications.
func (r *UserRepository) EmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
