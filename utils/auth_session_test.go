package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, time.Hour), mr
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store, mr := newTestSessionStore(t)
	ctx := context.Background()

	session := store.New()
	require.NotEmpty(t, session.ID)
	assert.False(t, session.Authenticated())

	session.Login(signedToken(t, jwt.MapClaims{"email": "jane@example.com", "name": "Jane"}))
	session.Flash = "Welcome back"
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, time.Hour, mr.TTL(WebSessionPrefix+session.ID))

	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Authenticated())
	assert.Equal(t, "jane@example.com", loaded.Email)
	assert.Equal(t, "Jane", loaded.Name)
	assert.Equal(t, "Welcome back", loaded.PopFlash())
	assert.Empty(t, loaded.Flash)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionLogoutKeepsSession(t *testing.T) {
	session := &WebSession{ID: "sid"}
	session.Login("opaque-token")
	assert.True(t, session.Authenticated())
	assert.Empty(t, session.Email, "undecodable tokens carry no details")

	session.Logout()
	assert.False(t, session.Authenticated())
	assert.Equal(t, "sid", session.ID)

	var nilSession *WebSession
	assert.False(t, nilSession.Authenticated())
}

func TestCheckHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	up := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() {
		_ = up.Close()
		_ = down.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	status := CheckHealth(ctx, []*redis.Client{up}, nil)
	assert.True(t, status.Healthy())
	assert.Nil(t, status.Mongo)
	assert.Equal(t, status, GetHealthStatus())

	status = CheckHealth(ctx, []*redis.Client{up, down}, nil)
	assert.Equal(t, []bool{true, false}, status.Redis)
	assert.False(t, status.Healthy())
}

func TestSessionStoreSealsToken(t *testing.T) {
	store, mr := newTestSessionStore(t)
	sealer, err := NewSealer("session-secret")
	require.NoError(t, err)
	store.WithSealer(sealer)
	ctx := context.Background()

	session := store.New()
	session.Login("plain-backend-token")
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, "plain-backend-token", session.Token, "the caller's copy is untouched")

	raw, err := mr.Get(WebSessionPrefix + session.ID)
	require.NoError(t, err)
	assert.NotContains(t, raw, "plain-backend-token")

	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "plain-backend-token", loaded.Token)

	other, err := NewSealer("rotated-secret")
	require.NoError(t, err)
	store.WithSealer(other)
	loaded, err = store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated())
}

func TestSealer(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)

	sealer, err := NewSealer("k")
	require.NoError(t, err)
	a, err := sealer.Seal("token")
	require.NoError(t, err)
	b, err := sealer.Seal("token")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh nonce per seal")

	out, err := sealer.Open(a)
	require.NoError(t, err)
	assert.Equal(t, "token", out)

	_, err = sealer.Open("AAAA")
	assert.Error(t, err)
	_, err = sealer.Open("%%%")
	assert.Error(t, err)
}

func TestSessionStoreRotate(t *testing.T) {
	store, mr := newTestSessionStore(t)
	ctx := context.Background()

	session := store.New()
	session.Flash = "hello"
	require.NoError(t, store.Save(ctx, session))
	oldID := session.ID

	require.NoError(t, store.Rotate(ctx, session))
	assert.NotEqual(t, oldID, session.ID)
	assert.False(t, mr.Exists(WebSessionPrefix+oldID))

	require.NoError(t, store.Save(ctx, session))
	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded.Flash)
}
