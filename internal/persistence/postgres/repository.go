// Package postgres is the pgx-backed accounts repository.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lifetrack/internal/accounts"
	"example.com/lifetrack/internal/observability"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Repository provides Postgres-backed persistence for users and their data blobs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// CreateUser inserts a user, mapping the unique index violation to ErrUsernameTaken.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string, createdAt time.Time) (accounts.User, error) {
	const stmt = `INSERT INTO users (username, password_hash, created_at) VALUES ($1,$2,$3) RETURNING id`

	user := accounts.User{Username: username, PasswordHash: passwordHash, CreatedAt: createdAt}
	if err := r.pool.QueryRow(ctx, stmt, username, passwordHash, createdAt).Scan(&user.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return accounts.User{}, accounts.ErrUsernameTaken
		}
		return accounts.User{}, err
	}
	return user, nil
}

// UserByUsername looks a user up case-insensitively.
func (r *Repository) UserByUsername(ctx context.Context, username string) (*accounts.User, error) {
	const query = `SELECT id, username, password_hash, created_at FROM users WHERE LOWER(username) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

// UserByID looks a user up by id.
func (r *Repository) UserByID(ctx context.Context, id int64) (*accounts.User, error) {
	const query = `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*accounts.User, error) {
	var u accounts.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ListUsers returns users ordered by (created_at, id).
func (r *Repository) ListUsers(ctx context.Context, cursor *accounts.Cursor, limit int) ([]accounts.User, *accounts.Cursor, error) {
	args := []interface{}{limit}
	query := `SELECT id, username, password_hash, created_at FROM users`

	if cursor != nil {
		query += ` WHERE (created_at, id) > ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	query += ` ORDER BY created_at, id LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]accounts.User, 0, limit)
	for rows.Next() {
		var u accounts.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, nil, err
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *accounts.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		next = &accounts.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return results, next, nil
}

// GetData fetches one blob.
func (r *Repository) GetData(ctx context.Context, userID int64, key string) (*accounts.DataEntry, error) {
	const query = `SELECT data_key, value, updated_at FROM user_data WHERE user_id = $1 AND data_key = $2`

	var entry accounts.DataEntry
	var value []byte
	if err := r.pool.QueryRow(ctx, query, userID, key).Scan(&entry.Key, &value, &entry.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	entry.Value = json.RawMessage(value)
	return &entry, nil
}

// PutData upserts a blob.
func (r *Repository) PutData(ctx context.Context, userID int64, key string, value json.RawMessage, updatedAt time.Time) error {
	const stmt = `INSERT INTO user_data (user_id, data_key, value, updated_at) VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id, data_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.pool.Exec(ctx, stmt, userID, key, []byte(value), updatedAt); err != nil {
		return err
	}
	observability.RecordDataPersisted(updatedAt)
	return nil
}

// ListData returns every blob of a user ordered by key.
func (r *Repository) ListData(ctx context.Context, userID int64) ([]accounts.DataEntry, error) {
	const query = `SELECT data_key, value, updated_at FROM user_data WHERE user_id = $1 ORDER BY data_key`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]accounts.DataEntry, 0)
	for rows.Next() {
		var entry accounts.DataEntry
		var value []byte
		if err := rows.Scan(&entry.Key, &value, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entry.Value = json.RawMessage(value)
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Stats counts users and stored blobs.
func (r *Repository) Stats(ctx context.Context) (accounts.Stats, error) {
	const query = `SELECT (SELECT COUNT(*) FROM users), (SELECT COUNT(*) FROM user_data)`

	var stats accounts.Stats
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Users, &stats.DataEntries); err != nil {
		return accounts.Stats{}, err
	}
	return stats, nil
}
