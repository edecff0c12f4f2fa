package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cedh-tracker/internal/db"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewUserRepository(queries *db.Queries, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		queries: queries,
		logger:  logger,
	}
}

// EnsureByEmail returns the user with the given email, creating it with name when absent.
func (r *UserRepository) EnsureByEmail(ctx context.Context, email string, name *string) (*domain.User, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user, err := r.queries.UpsertUserByEmail(ctx, db.UpsertUserByEmailParams{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("email", email).Msg("failed to upsert user")
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	u := toUser(user)
	return &u, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u := toUser(user)
	return &u, nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id string, name *string) error {
	n, err := r.queries.UpdateUserName(ctx, db.UpdateUserNameParams{
		Name:      name,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		return fmt.Errorf("failed to update user name: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
