// Package memory is an in-process accounts repository used when no database is configured.
package memory

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"example.com/lifetrack/internal/accounts"
	"example.com/lifetrack/internal/persistence"
)

// Repository keeps users and data blobs in maps guarded by a mutex.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]accounts.User
	byName map[string]int64
	data   map[int64]map[string]accounts.DataEntry
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		users:  make(map[int64]accounts.User),
		byName: make(map[string]int64),
		data:   make(map[int64]map[string]accounts.DataEntry),
	}
}

func (r *Repository) CreateUser(_ context.Context, username, passwordHash string, createdAt time.Time) (accounts.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToLower(username)
	if _, ok := r.byName[name]; ok {
		return accounts.User{}, accounts.ErrUsernameTaken
	}
	r.nextID++
	user := accounts.User{ID: r.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: createdAt}
	r.users[user.ID] = user
	r.byName[name] = user.ID
	return user, nil
}

func (r *Repository) UserByUsername(_ context.Context, username string) (*accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[strings.ToLower(username)]
	if !ok {
		return nil, nil
	}
	user := r.users[id]
	return &user, nil
}

func (r *Repository) UserByID(_ context.Context, id int64) (*accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *Repository) ListUsers(_ context.Context, cursor *accounts.Cursor, limit int) ([]accounts.User, *accounts.Cursor, error) {
	r.mu.RLock()
	all := make([]accounts.User, 0, len(r.users))
	for _, u := range r.users {
		if persistence.After(cursor, u.CreatedAt, u.ID) {
			all = append(all, u)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if limit <= 0 || len(all) <= limit {
		return all, nil, nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	return page, &accounts.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}

func (r *Repository) GetData(_ context.Context, userID int64, key string) (*accounts.DataEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.data[userID][key]
	if !ok {
		return nil, nil
	}
	entry.Value = slices.Clone(entry.Value)
	return &entry, nil
}

func (r *Repository) PutData(_ context.Context, userID int64, key string, value json.RawMessage, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data[userID] == nil {
		r.data[userID] = make(map[string]accounts.DataEntry)
	}
	r.data[userID][key] = accounts.DataEntry{Key: key, Value: slices.Clone(value), UpdatedAt: updatedAt}
	return nil
}

func (r *Repository) ListData(_ context.Context, userID int64) ([]accounts.DataEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]accounts.DataEntry, 0, len(r.data[userID]))
	for _, entry := range r.data[userID] {
		entry.Value = slices.Clone(entry.Value)
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *Repository) Stats(_ context.Context) (accounts.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := accounts.Stats{Users: len(r.users)}
	for _, entries := range r.data {
		stats.DataEntries += len(entries)
	}
	return stats, nil
}
