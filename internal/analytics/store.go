package analytics

import (
	"context"
	"time"

	"cedh-tracker/internal/domain"
)

// Filter scopes every read to one owner and, optionally, to games started at or after Since.
type Filter struct {
	UserID string
	Since  *time.Time
}

// Includes reports whether a game started at startedAt passes the date window.
func (f Filter) Includes(startedAt time.Time) bool {
	return f.Since == nil || !startedAt.Before(*f.Since)
}

type GameQuery struct {
	Filter
	WithTurnsOnly bool // only games with a recorded turns-to-win
	Newest        bool // order by start time descending instead of ascending
	Limit         int  // 0 means no limit
}

type GroupField string

const (
	GroupByResult    GroupField = "result"
	GroupByDeckID    GroupField = "deck_id"
	GroupBySeat      GroupField = "seat"
	GroupByMulligans GroupField = "mulligans"
)

type GroupQuery struct {
	Filter
	By     []GroupField
	Result *domain.Result // equality filter on the game-player result

	OrderByCountDesc bool
	Limit            int
}

// GroupRow is one "group by with count" bucket. Only the fields named in
// GroupQuery.By are populated.
type GroupRow struct {
	Result    domain.Result
	DeckID    string
	Seat      int
	Mulligans int
	Count     int
}

// DeckGameRow is one game-player row of a deck, with the game's turns-to-win and
// the archetype of the row's own deck.
type DeckGameRow struct {
	domain.GamePlayer
	StartedAt  time.Time
	TurnsToWin *int
	Archetype  domain.Archetype
}

// Store is the read-only result store the aggregator reduces over.
type Store interface {
	FindGames(ctx context.Context, q GameQuery) ([]domain.GameWithPlayers, error)
	GroupGamePlayers(ctx context.Context, q GroupQuery) ([]GroupRow, error)
	FindDecks(ctx context.Context, userID string) ([]domain.Deck, error)
	// FindDeck returns nil, nil when the deck does not exist.
	FindDeck(ctx context.Context, deckID string) (*domain.Deck, error)
	FindDeckGames(ctx context.Context, deckID string) ([]DeckGameRow, error)
}
