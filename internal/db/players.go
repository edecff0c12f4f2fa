package db

import (
	"context"
	"time"
)

const playerColumns = `id, user_id, display_name, created_at, updated_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (Player, error) {
	var i Player
	err := row.Scan(&i.ID, &i.UserID, &i.DisplayName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const upsertPlayer = `
INSERT INTO players (id, user_id, display_name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, display_name) DO UPDATE SET updated_at = players.updated_at
RETURNING ` + playerColumns

type UpsertPlayerParams struct {
	ID          string
	UserID      string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) UpsertPlayer(ctx context.Context, arg UpsertPlayerParams) (Player, error) {
	row := q.db.QueryRowContext(ctx, upsertPlayer,
		arg.ID,
		arg.UserID,
		arg.DisplayName,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPlayer(row)
}

const getPlayer = `SELECT ` + playerColumns + ` FROM players WHERE id = ?`

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	return scanPlayer(q.db.QueryRowContext(ctx, getPlayer, id))
}

const listPlayersByUser = `SELECT ` + playerColumns + ` FROM players WHERE user_id = ? ORDER BY display_name ASC`

func (q *Queries) ListPlayersByUser(ctx context.Context, userID string) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		i, err := scanPlayer(rows)
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
