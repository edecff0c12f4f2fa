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

type DeckRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewDeckRepository(queries *db.Queries, logger zerolog.Logger) *DeckRepository {
	return &DeckRepository{
		queries: queries,
		logger:  logger,
	}
}

// DeckParams describes a deck keyed by (player, name). Saving it again updates the
// remaining fields and marks the deck active.
type DeckParams struct {
	Name          string
	Archetype     domain.Archetype
	ColorIdentity string
	Commanders    []string
	Companion     *string
	MoxfieldURL   *string
}

func (r *DeckRepository) Upsert(ctx context.Context, userID, playerID string, params DeckParams) (*domain.Deck, error) {
	return upsertDeck(ctx, r.queries, userID, playerID, params)
}

func upsertDeck(ctx context.Context, q *db.Queries, userID, playerID string, params DeckParams) (*domain.Deck, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("deck name is empty: %w", domain.ErrInvalidInput)
	}
	commanders, err := encodeList(params.Commanders)
	if err != nil {
		return nil, err
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}
	archetype := params.Archetype
	if !archetype.Valid() {
		archetype = domain.ArchetypeOther
	}

	now := time.Now().UTC()
	row, err := q.UpsertDeck(ctx, db.UpsertDeckParams{
		ID:            id,
		UserID:        userID,
		PlayerID:      playerID,
		Name:          name,
		Archetype:     string(archetype),
		ColorIdentity: params.ColorIdentity,
		Commanders:    commanders,
		Companion:     params.Companion,
		MoxfieldUrl:   params.MoxfieldURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert deck %s: %w", name, err)
	}
	deck, err := toDeck(row)
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// Get returns the deck only when it belongs to userID.
func (r *DeckRepository) Get(ctx context.Context, userID, id string) (*domain.Deck, error) {
	return getOwnedDeck(ctx, r.queries, userID, id)
}

func getOwnedDeck(ctx context.Context, q *db.Queries, userID, id string) (*domain.Deck, error) {
	row, err := q.GetDeck(ctx, id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && row.UserID != userID) {
		return nil, fmt.Errorf("deck %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	deck, err := toDeck(row)
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

func (r *DeckRepository) List(ctx context.Context, userID string) ([]domain.Deck, error) {
	rows, err := r.queries.ListDecksByUser(ctx, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list decks")
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return toDecks(rows)
}
