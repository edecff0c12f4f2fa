package db

import (
	"context"
	"time"
)

const createGame = `
INSERT INTO games (id, user_id, pod_id, started_at, ended_at, turns_to_win, win_condition_tags, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateGameParams struct {
	ID               string
	UserID           string
	PodID            string
	StartedAt        time.Time
	EndedAt          *time.Time
	TurnsToWin       *int64
	WinConditionTags string
	Notes            *string
	CreatedAt        time.Time
}

func (q *Queries) CreateGame(ctx context.Context, arg CreateGameParams) error {
	_, err := q.db.ExecContext(ctx, createGame,
		arg.ID,
		arg.UserID,
		arg.PodID,
		arg.StartedAt,
		arg.EndedAt,
		arg.TurnsToWin,
		arg.WinConditionTags,
		arg.Notes,
		arg.CreatedAt,
	)
	return err
}

const createGamePlayer = `
INSERT INTO game_players (id, user_id, game_id, player_id, deck_id, seat, mulligans, result, eliminated_by_player_id, turn_eliminated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateGamePlayerParams struct {
	ID                   string
	UserID               string
	GameID               string
	PlayerID             string
	DeckID               string
	Seat                 int64
	Mulligans            int64
	Result               string
	EliminatedByPlayerID *string
	TurnEliminated       *int64
}

func (q *Queries) CreateGamePlayer(ctx context.Context, arg CreateGamePlayerParams) error {
	_, err := q.db.ExecContext(ctx, createGamePlayer,
		arg.ID,
		arg.UserID,
		arg.GameID,
		arg.PlayerID,
		arg.DeckID,
		arg.Seat,
		arg.Mulligans,
		arg.Result,
		arg.EliminatedByPlayerID,
		arg.TurnEliminated,
	)
	return err
}

const listPlayerGames = `
SELECT gp.id, gp.user_id, gp.game_id, gp.player_id, gp.deck_id, gp.seat, gp.mulligans, gp.result,
       gp.eliminated_by_player_id, gp.turn_eliminated,
       g.started_at, g.turns_to_win,
       d.name, d.archetype
FROM game_players gp
JOIN games g ON g.id = gp.game_id
JOIN decks d ON d.id = gp.deck_id
WHERE gp.user_id = ? AND gp.player_id = ?
ORDER BY g.started_at DESC, gp.id ASC`

type ListPlayerGamesParams struct {
	UserID   string
	PlayerID string
}

type ListPlayerGamesRow struct {
	GamePlayer    GamePlayer
	StartedAt     time.Time
	TurnsToWin    *int64
	DeckName      string
	DeckArchetype string
}

func (q *Queries) ListPlayerGames(ctx context.Context, arg ListPlayerGamesParams) ([]ListPlayerGamesRow, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerGames, arg.UserID, arg.PlayerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPlayerGamesRow
	for rows.Next() {
		var i ListPlayerGamesRow
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
			&i.DeckName,
			&i.DeckArchetype,
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
