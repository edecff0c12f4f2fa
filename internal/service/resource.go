package service

import (
	"context"
	"fmt"

	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ResourceService lists what the record wizard offers for selection.
type ResourceService struct {
	players *repository.PlayerRepository
	decks   *repository.DeckRepository
	games   *repository.GameRepository
	logger  zerolog.Logger
}

func NewResourceService(players *repository.PlayerRepository, decks *repository.DeckRepository, games *repository.GameRepository, logger zerolog.Logger) *ResourceService {
	return &ResourceService{players: players, decks: decks, games: games, logger: logger}
}

type Resources struct {
	Players []domain.Player `json:"players"`
	Decks   []domain.Deck   `json:"decks"`
	Pods    []domain.Pod    `json:"pods"`
	Tags    []domain.Tag    `json:"tags"`
}

func (s *ResourceService) List(ctx context.Context, userID string) (*Resources, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var r Resources
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r.Players, err = s.players.List(gCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		r.Decks, err = s.decks.List(gCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		r.Pods, err = s.games.ListPods(gCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		r.Tags, err = s.games.ListTags(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list resources")
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return &r, nil
}
