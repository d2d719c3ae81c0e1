package accounts_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/lifetrack/internal/accounts"
	"example.com/lifetrack/internal/auth"
	"example.com/lifetrack/internal/clock"
	"example.com/lifetrack/internal/persistence/memory"
)

var tokens = auth.Config{Secret: "test-secret", Issuer: "lifetrack-test", TTL: time.Hour}

type mapCache struct {
	values  map[string]json.RawMessage
	getErr  error
	deletes int
}

func (c *mapCache) id(userID int64, key string) string { return fmt.Sprintf("%d/%s", userID, key) }

func (c *mapCache) Get(_ context.Context, userID int64, key string) (json.RawMessage, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.values[c.id(userID, key)]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, userID int64, key string, value json.RawMessage) error {
	c.values[c.id(userID, key)] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, userID int64, key string) error {
	c.deletes++
	delete(c.values, c.id(userID, key))
	return nil
}

type recordingPublisher struct {
	events []accounts.DataSaved
	err    error
}

func (p *recordingPublisher) PublishDataSaved(_ context.Context, e accounts.DataSaved) error {
	p.events = append(p.events, e)
	return p.err
}

func newService(opts ...accounts.Option) *accounts.Service {
	return accounts.NewService(memory.NewRepository(), tokens, opts...)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	session, err := svc.Register(ctx, " sam ", "pw")
	require.NoError(t, err)
	require.Equal(t, "sam", session.User.Username)
	claims, err := auth.Parse(session.Token, tokens)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, claims.UserID)

	_, err = svc.Register(ctx, "SAM", "other")
	require.ErrorIs(t, err, accounts.ErrUsernameTaken)

	login, err := svc.Login(ctx, "sam", "pw")
	require.NoError(t, err)
	require.Equal(t, session.User.ID, login.User.ID)

	_, err = svc.Login(ctx, "sam", "wrong")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "pw")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	_, err = svc.Register(ctx, "", "pw")
	require.ErrorIs(t, err, accounts.ErrMissingCredentials)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC))
	cache := &mapCache{values: map[string]json.RawMessage{}}
	pub := &recordingPublisher{}
	svc := newService(accounts.WithClock(clk), accounts.WithCache(cache), accounts.WithPublisher(pub))

	session, err := svc.Register(ctx, "sam", "pw")
	require.NoError(t, err)
	uid := session.User.ID

	got, err := svc.Load(ctx, uid, "activity-store")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, svc.Save(ctx, uid, "activity-store", json.RawMessage(`{"boxing":{"totalHours":3}}`)))
	got, err = svc.Load(ctx, uid, "activity-store")
	require.NoError(t, err)
	require.JSONEq(t, `{"boxing":{"totalHours":3}}`, string(got))
	require.Len(t, cache.values, 1, "read fills the cache")

	require.NoError(t, svc.Save(ctx, uid, "activity-store", json.RawMessage(`{}`)))
	require.Empty(t, cache.values, "write invalidates the cache")
	require.Len(t, pub.events, 2)
	require.Equal(t, accounts.DataSaved{UserID: uid, Key: "activity-store", Bytes: 2, SavedAt: clk.Now()}, pub.events[1])

	require.ErrorIs(t, svc.Save(ctx, uid, "../etc", json.RawMessage(`{}`)), accounts.ErrInvalidKey)
	require.ErrorIs(t, svc.Save(ctx, uid, "k", json.RawMessage(`{`)), accounts.ErrInvalidData)
	_, err = svc.Load(ctx, uid, "")
	require.ErrorIs(t, err, accounts.ErrInvalidKey)
}

func TestSideChannelFailuresDoNotFailRequests(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{values: map[string]json.RawMessage{}, getErr: errors.New("redis down")}
	pub := &recordingPublisher{err: errors.New("kafka down")}
	svc := newService(accounts.WithCache(cache), accounts.WithPublisher(pub))

	session, err := svc.Register(ctx, "sam", "pw")
	require.NoError(t, err)
	require.NoError(t, svc.Save(ctx, session.User.ID, "k", json.RawMessage(`[1]`)))
	got, err := svc.Load(ctx, session.User.ID, "k")
	require.NoError(t, err)
	require.JSONEq(t, `[1]`, string(got))
}

func TestAdminViews(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC))
	svc := newService(accounts.WithClock(clk))

	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		s, err := svc.Register(ctx, name, "pw")
		require.NoError(t, err)
		ids = append(ids, s.User.ID)
		clk.Advance(time.Minute)
	}
	require.NoError(t, svc.Save(ctx, ids[0], "activity-store", json.RawMessage(`{}`)))
	require.NoError(t, svc.Save(ctx, ids[0], "gamification-store", json.RawMessage(`{}`)))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, accounts.Stats{Users: 3, DataEntries: 2}, stats)

	page, next, err := svc.Users(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	rest, next, err := svc.Users(ctx, next, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Nil(t, next)
	require.Equal(t, "c", rest[0].Username)

	entries, err := svc.UserData(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "activity-store", entries[0].Key)

	_, err = svc.UserData(ctx, 999)
	require.ErrorIs(t, err, accounts.ErrUserNotFound)
}
