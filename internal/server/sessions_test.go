package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/bookmarks/internal/session"
)

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Create(ctx, "tok", time.Minute))
	ok, err := store.Valid(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, err = store.Valid(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Valid(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerSessionStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewBadgerSessionStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, "tok", time.Hour))
	ok, err := store.Valid(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Close())

	// sessions survive a reopen
	store, err = NewBadgerSessionStore(dir)
	require.NoError(t, err)
	defer store.Close()
	ok, err = store.Valid(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "tok"))
	ok, err = store.Valid(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthenticator("pw", NewMemorySessionStore(), time.Hour)

	_, err := auth.Login(ctx, "wrong")
	assert.ErrorIs(t, err, session.ErrUnauthorized)

	token, err := auth.Login(ctx, "pw")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	ok, err := auth.Authorized(r)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, auth.Logout(ctx, token))
	ok, err = auth.Authorized(r)
	require.NoError(t, err)
	assert.False(t, ok)

	disabled := NewAuthenticator("", NewMemorySessionStore(), time.Hour)
	_, err = disabled.Login(ctx, "")
	assert.ErrorIs(t, err, session.ErrUnauthorized)
}
