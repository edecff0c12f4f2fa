package service

import (
	"context"
	"fmt"
	"slices"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/api"
	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type DeckService struct {
	decks    *repository.DeckRepository
	store    analytics.Store
	agg      *analytics.Aggregator
	moxfield *api.MoxfieldClient
	logger   zerolog.Logger
}

func NewDeckService(decks *repository.DeckRepository, store analytics.Store, agg *analytics.Aggregator, moxfield *api.MoxfieldClient, logger zerolog.Logger) *DeckService {
	return &DeckService{decks: decks, store: store, agg: agg, moxfield: moxfield, logger: logger}
}

// Performance returns the deck's aggregate record; decks of other users are not found.
func (s *DeckService) Performance(ctx context.Context, userID, deckID string) (*analytics.DeckPerformance, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.decks.Get(ctx, userID, deckID); err != nil {
		return nil, err
	}
	perf, err := s.agg.DeckPerformance(ctx, deckID)
	if err != nil {
		s.logger.Error().Err(err).Str("deck_id", deckID).Msg("failed to load deck performance")
		return nil, err
	}
	if perf == nil {
		return nil, fmt.Errorf("deck %s: %w", deckID, domain.ErrNotFound)
	}
	return perf, nil
}

type TrendPoint struct {
	Date    string  `json:"date"`
	WinRate float64 `json:"winRate"`
}

// Trend is the cumulative win rate after each game, oldest first.
func (s *DeckService) Trend(ctx context.Context, userID, deckID string) ([]TrendPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.decks.Get(ctx, userID, deckID); err != nil {
		return nil, err
	}
	rows, err := s.store.FindDeckGames(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck games: %w", err)
	}
	slices.SortStableFunc(rows, func(a, b analytics.DeckGameRow) int { return a.StartedAt.Compare(b.StartedAt) })

	points := make([]TrendPoint, 0, len(rows))
	wins := 0
	for i, row := range rows {
		if row.Result == domain.ResultWin {
			wins++
		}
		points = append(points, TrendPoint{
			Date:    row.StartedAt.UTC().Format("2006-01-02"),
			WinRate: float64(wins) / float64(i+1),
		})
	}
	return points, nil
}

func (s *DeckService) LookupMoxfield(ctx context.Context, deckURL string) (*api.MoxfieldDeck, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	deck, err := s.moxfield.GetDeck(ctx, deckURL)
	if err != nil {
		return nil, fmt.Errorf("failed to look up moxfield deck: %w", err)
	}
	s.logger.Info().Str("public_id", deck.PublicID).Msg("moxfield deck fetched")
	return deck, nil
}
