package service

import (
	"context"
	"fmt"
	"strings"

	"cedh-tracker/internal/config"
	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   *repository.UserRepository
	cfg    *config.Config
	logger zerolog.Logger
}

func NewUserService(repo *repository.UserRepository, cfg *config.Config, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, cfg: cfg, logger: logger}
}

// ActiveUser resolves the caller by email, falling back to the shared guest account.
func (s *UserService) ActiveUser(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	var name *string
	if email == "" {
		email = s.cfg.GuestEmail
		name = &s.cfg.GuestName
	}

	user, err := s.repo.EnsureByEmail(ctx, email, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

// UpdateProfile sets the display name; a blank name clears it.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var value *string
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		value = &trimmed
	}
	if err := s.repo.UpdateName(ctx, userID, value); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to update profile")
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
