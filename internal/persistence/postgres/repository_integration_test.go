//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/lifetrack/internal/accounts"
)

func TestRepositoryUsersAndData(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("lifetrack"),
		postgrescontainer.WithUsername("lifetrack"),
		postgrescontainer.WithPassword("lifetrack"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	sam, err := repo.CreateUser(ctx, "Sam", "hash", now)
	require.NoError(t, err)
	require.NotZero(t, sam.ID)

	_, err = repo.CreateUser(ctx, "sam", "hash", now)
	require.ErrorIs(t, err, accounts.ErrUsernameTaken)

	found, err := repo.UserByUsername(ctx, "SAM")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, sam.ID, found.ID)

	missing, err := repo.UserByID(ctx, sam.ID+100)
	require.NoError(t, err)
	require.Nil(t, missing)

	entry, err := repo.GetData(ctx, sam.ID, "activity-store")
	require.NoError(t, err)
	require.Nil(t, entry)

	require.NoError(t, repo.PutData(ctx, sam.ID, "activity-store", json.RawMessage(`{"a":1}`), now))
	require.NoError(t, repo.PutData(ctx, sam.ID, "activity-store", json.RawMessage(`{"a":2}`), now.Add(time.Second)))
	entry, err = repo.GetData(ctx, sam.ID, "activity-store")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":2}`, string(entry.Value))

	kim, err := repo.CreateUser(ctx, "kim", "hash", now.Add(time.Minute))
	require.NoError(t, err)

	page, next, err := repo.ListUsers(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, sam.ID, page[0].ID)
	page, _, err = repo.ListUsers(ctx, next, 1)
	require.NoError(t, err)
	require.Equal(t, kim.ID, page[0].ID)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, accounts.Stats{Users: 2, DataEntries: 1}, stats)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
