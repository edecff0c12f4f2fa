package db

import (
	"context"
	"time"
)

const deckColumns = `id, user_id, player_id, name, archetype, color_identity, commanders, companion, moxfield_url, is_active, created_at, updated_at`

func scanDeck(row interface{ Scan(...interface{}) error }) (Deck, error) {
	var i Deck
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.PlayerID,
		&i.Name,
		&i.Archetype,
		&i.ColorIdentity,
		&i.Commanders,
		&i.Companion,
		&i.MoxfieldUrl,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertDeck = `
INSERT INTO decks (id, user_id, player_id, name, archetype, color_identity, commanders, companion, moxfield_url, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (player_id, name) DO UPDATE SET
    archetype = excluded.archetype,
    color_identity = excluded.color_identity,
    commanders = excluded.commanders,
    companion = excluded.companion,
    moxfield_url = excluded.moxfield_url,
    is_active = 1,
    updated_at = excluded.updated_at
RETURNING ` + deckColumns

type UpsertDeckParams struct {
	ID            string
	UserID        string
	PlayerID      string
	Name          string
	Archetype     string
	ColorIdentity string
	Commanders    string
	Companion     *string
	MoxfieldUrl   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (q *Queries) UpsertDeck(ctx context.Context, arg UpsertDeckParams) (Deck, error) {
	row := q.db.QueryRowContext(ctx, upsertDeck,
		arg.ID,
		arg.UserID,
		arg.PlayerID,
		arg.Name,
		arg.Archetype,
		arg.ColorIdentity,
		arg.Commanders,
		arg.Companion,
		arg.MoxfieldUrl,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanDeck(row)
}

const getDeck = `SELECT ` + deckColumns + ` FROM decks WHERE id = ?`

func (q *Queries) GetDeck(ctx context.Context, id string) (Deck, error) {
	return scanDeck(q.db.QueryRowContext(ctx, getDeck, id))
}

const listDecksByUser = `SELECT ` + deckColumns + ` FROM decks WHERE user_id = ? ORDER BY created_at ASC, name ASC`

func (q *Queries) ListDecksByUser(ctx context.Context, userID string) ([]Deck, error) {
	rows, err := q.db.QueryContext(ctx, listDecksByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Deck
	for rows.Next() {
		i, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listDeckGames = `
SELECT gp.id, gp.user_id, gp.game_id, gp.player_id, gp.deck_id, gp.seat, gp.mulligans, gp.result,
       gp.eliminated_by_player_id, gp.turn_eliminated,
       g.started_at, g.turns_to_win, d.archetype
FROM game_players gp
JOIN games g ON g.id = gp.game_id
JOIN decks d ON d.id = gp.deck_id
WHERE gp.deck_id = ?
ORDER BY g.started_at ASC, gp.id ASC`

type ListDeckGamesRow struct {
	GamePlayer GamePlayer
	StartedAt  time.Time
	TurnsToWin *int64
	Archetype  string
}

func (q *Queries) ListDeckGames(ctx context.Context, deckID string) ([]ListDeckGamesRow, error) {
	rows, err := q.db.QueryContext(ctx, listDeckGames, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListDeckGamesRow
	for rows.Next() {
		var i ListDeckGamesRow
		if err := rows.Scan(
			&i.GamePlayer.ID,
			&i.GamePlayer.UserID,
			&i.GamePlayer.GameID,
			&i.GamePlayer.PlayerID,
			&i.GamePlayer.DeckID,
			&i.GamePlayer.Seat,
			&i.GamePlayer.Mulligans,
			&i.GamePlayer.Result,
			&i.GamePlayer.EliminatedByPlayerID,
			&i.GamePlayer.TurnEliminated,
			&i.StartedAt,
			&i.TurnsToWin,
			&i.Archetype,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
