package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cedh-tracker/internal/db"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Ensure returns the user's player with displayName, creating it when absent.
func (r *PlayerRepository) Ensure(ctx context.Context, userID, displayName string) (*domain.Player, error) {
	return upsertPlayer(ctx, r.queries, userID, displayName)
}

func upsertPlayer(ctx context.Context, q *db.Queries, userID, displayName string) (*domain.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("player name is empty: %w", domain.ErrInvalidInput)
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	row, err := q.UpsertPlayer(ctx, db.UpsertPlayerParams{
		ID:          id,
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert player %s: %w", displayName, err)
	}
	p := toPlayer(row)
	return &p, nil
}

// Get returns the player only when it belongs to userID.
func (r *PlayerRepository) Get(ctx context.Context, userID, id string) (*domain.Player, error) {
	return getOwnedPlayer(ctx, r.queries, userID, id)
}

func getOwnedPlayer(ctx context.Context, q *db.Queries, userID, id string) (*domain.Player, error) {
	row, err := q.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && row.UserID != userID) {
		return nil, fmt.Errorf("player %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	p := toPlayer(row)
	return &p, nil
}

func (r *PlayerRepository) List(ctx context.Context, userID string) ([]domain.Player, error) {
	rows, err := r.queries.ListPlayersByUser(ctx, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list players")
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	players := make([]domain.Player, len(rows))
	for i, row := range rows {
		players[i] = toPlayer(row)
	}
	return players, nil
}

// PlayerGame is one seat a player took, enriched with its game and deck.
type PlayerGame struct {
	domain.GamePlayer
	StartedAt     time.Time
	TurnsToWin    *int
	DeckName      string
	DeckArchetype domain.Archetype
}

// Games lists the player's seats, newest game first.
func (r *PlayerRepository) Games(ctx context.Context, userID, playerID string) ([]PlayerGame, error) {
	rows, err := r.queries.ListPlayerGames(ctx, db.ListPlayerGamesParams{
		UserID:   userID,
		PlayerID: playerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list player games: %w", err)
	}
	games := make([]PlayerGame, len(rows))
	for i, row := range rows {
		games[i] = PlayerGame{
			GamePlayer:    toGamePlayer(row.GamePlayer),
			StartedAt:     row.StartedAt,
			TurnsToWin:    intPtr(row.TurnsToWin),
			DeckName:      row.DeckName,
			DeckArchetype: domain.ParseArchetype(row.DeckArchetype),
		}
	}
	return games, nil
}
