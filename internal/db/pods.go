package db

import (
	"context"
	"time"
)

const createPod = `INSERT INTO pods (id, user_id, event_id, created_at) VALUES (?, ?, ?, ?)`

type CreatePodParams struct {
	ID        string
	UserID    string
	EventID   *string
	CreatedAt time.Time
}

func (q *Queries) CreatePod(ctx context.Context, arg CreatePodParams) error {
	_, err := q.db.ExecContext(ctx, createPod, arg.ID, arg.UserID, arg.EventID, arg.CreatedAt)
	return err
}

const getPod = `SELECT id, user_id, event_id, created_at FROM pods WHERE id = ?`

func (q *Queries) GetPod(ctx context.Context, id string) (Pod, error) {
	var i Pod
	err := q.db.QueryRowContext(ctx, getPod, id).Scan(&i.ID, &i.UserID, &i.EventID, &i.CreatedAt)
	return i, err
}

const listPodsByUser = `SELECT id, user_id, event_id, created_at FROM pods WHERE user_id = ? ORDER BY created_at DESC`

func (q *Queries) ListPodsByUser(ctx context.Context, userID string) ([]Pod, error) {
	rows, err := q.db.QueryContext(ctx, listPodsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Pod
	for rows.Next() {
		var i Pod
		if err := rows.Scan(&i.ID, &i.UserID, &i.EventID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertTag = `
INSERT INTO tags (id, user_id, name) VALUES (?, ?, ?)
ON CONFLICT (user_id, name) DO NOTHING`

type UpsertTagParams struct {
	ID     string
	UserID string
	Name   string
}

func (q *Queries) UpsertTag(ctx context.Context, arg UpsertTagParams) error {
	_, err := q.db.ExecContext(ctx, upsertTag, arg.ID, arg.UserID, arg.Name)
	return err
}

const listTagsByUser = `SELECT id, user_id, name FROM tags WHERE user_id = ? ORDER BY name ASC`

func (q *Queries) ListTagsByUser(ctx context.Context, userID string) ([]Tag, error) {
	rows, err := q.db.QueryContext(ctx, listTagsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tag
	for rows.Next() {
		var i Tag
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
