package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community/config"
	domainerrors "community/internal/domain/errors"
	"community/internal/domain/repository"
	"community/internal/errors"
	"community/internal/testutil"
)

func sessionConfig(ttl time.Duration) *config.Config {
	return &config.Config{Auth: &config.AuthConfig{SessionTTL: ttl}}
}

func TestSessionStore_CreateGetRemove(t *testing.T) {
	client, server := testutil.NewTestRedis(t)
	ctx := testutil.Context(t)
	store := NewSessionStore(client, sessionConfig(30*time.Minute))

	session, err := store.Create(ctx, 7, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, 30*time.Minute, session.TTL)

	raw, err := server.Get("session:" + session.ID)
	require.NoError(t, err)
	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, float64(7), stored["userId"])
	assert.Equal(t, "alice", stored["nickname"])

	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.UserID)
	assert.Equal(t, "alice", loaded.Nickname)
	assert.Equal(t, session.ID, loaded.ID)

	removed, err := store.Remove(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	client, server := testutil.NewTestRedis(t)
	ctx := testutil.Context(t)
	store := NewSessionStore(client, sessionConfig(time.Minute))

	session, err := store.Create(ctx, 1, "bob")
	require.NoError(t, err)

	server.FastForward(61 * time.Second)

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionStore_UnknownAndEmptyIDs(t *testing.T) {
	client, _ := testutil.NewTestRedis(t)
	ctx := testutil.Context(t)
	store := NewSessionStore(client, nil)

	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	_, err = store.Get(ctx, "never-issued")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionStore_WriteFailure(t *testing.T) {
	client, server := testutil.NewTestRedis(t)
	ctx := testutil.Context(t)
	store := NewSessionStore(client, nil)
	server.Close()

	_, err := store.Create(ctx, 1, "carol")
	assert.True(t, errors.Is(err, domainerrors.ErrSessionPersistence))
}
