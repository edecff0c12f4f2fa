package service

import (
	"context"
	"fmt"
	"time"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/config"
	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	agg    *analytics.Aggregator
	cfg    *config.Config
	logger zerolog.Logger
}

func NewAnalyticsService(agg *analytics.Aggregator, cfg *config.Config, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{agg: agg, cfg: cfg, logger: logger}
}

type Dashboard struct {
	Kpis       *analytics.DashboardKpis  `json:"kpis"`
	Recent     []domain.GameWithPlayers  `json:"recent"`
	Archetypes []analytics.ArchetypeRate `json:"archetypes"`
	Seats      []analytics.SeatRate      `json:"seats"`
}

// Dashboard loads the home page panels concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	var d Dashboard
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Kpis, err = s.agg.DashboardKpis(gCtx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Recent, err = s.agg.RecentGames(gCtx, userID, s.cfg.RecentGamesLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.Archetypes, err = s.agg.WinRateByArchetype(gCtx, userID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		d.Seats, err = s.agg.SeatAdvantage(gCtx, userID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load dashboard")
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	return &d, nil
}

type Overview struct {
	Archetypes []analytics.ArchetypeRate `json:"archetypes"`
	Seats      []analytics.SeatRate      `json:"seats"`
	Histogram  []analytics.HistogramBin  `json:"histogram"`
	Mulligans  *analytics.MulliganImpact `json:"mulligans"`
	Matchups   []analytics.MatchupRow    `json:"matchups"`
}

// Overview loads every analytics panel for games started at or after since.
// A bucket below 1 falls back to the configured histogram bucket.
func (s *AnalyticsService) Overview(ctx context.Context, userID string, since *time.Time, bucket int) (*Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if bucket < 1 {
		bucket = s.cfg.HistogramBucket
	}

	s.logger.Debug().Str("user_id", userID).Int("bucket", bucket).Bool("windowed", since != nil).Msg("loading analytics overview")

	var o Overview
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		o.Archetypes, err = s.agg.WinRateByArchetype(gCtx, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		o.Seats, err = s.agg.SeatAdvantage(gCtx, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		o.Histogram, err = s.agg.TurnsToWinHistogram(gCtx, userID, bucket, since)
		return err
	})
	g.Go(func() error {
		var err error
		o.Mulligans, err = s.agg.MulliganImpact(gCtx, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		o.Matchups, err = s.agg.MatchupMatrix(gCtx, userID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load analytics")
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}
	return &o, nil
}

func (s *AnalyticsService) RecentGames(ctx context.Context, userID string, take int) ([]domain.GameWithPlayers, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if take < 1 {
		take = s.cfg.RecentGamesLimit
	}
	return s.agg.RecentGames(ctx, userID, take)
}
