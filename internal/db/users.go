package db

import (
	"context"
	"time"
)

const userColumns = `id, email, name, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (User, error) {
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const upsertUserByEmail = `
INSERT INTO users (id, email, name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET email = excluded.email
RETURNING ` + userColumns

type UpsertUserByEmailParams struct {
	ID        string
	Email     string
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertUserByEmail keeps an existing user untouched and returns it.
func (q *Queries) UpsertUserByEmail(ctx context.Context, arg UpsertUserByEmailParams) (User, error) {
	row := q.db.QueryRowContext(ctx, upsertUserByEmail,
		arg.ID,
		arg.Email,
		arg.Name,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanUser(row)
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const updateUserName = `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`

type UpdateUserNameParams struct {
	Name      *string
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) UpdateUserName(ctx context.Context, arg UpdateUserNameParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserName, arg.Name, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
