package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Token(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.SetToken(ctx, "abc"))
	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Token(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestConfigStore_PersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("server_url", "http://localhost:8080")
	s := NewConfigStore(v, path)

	_, err := s.Token(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.SetToken(ctx, "tok-file"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh viper reading the same file sees the token and keeps other keys
	reloaded := viper.New()
	reloaded.SetConfigFile(path)
	require.NoError(t, reloaded.ReadInConfig())
	assert.Equal(t, "tok-file", reloaded.GetString(TokenKey))
	assert.Equal(t, "http://localhost:8080", reloaded.GetString("server_url"))

	require.NoError(t, s.Clear(ctx))
	_, err = s.Token(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("MEDIREMIND_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MEDIREMIND_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	s, err := NewRedisStore(ctx, url, "test-"+t.Name(), time.Minute)
	require.NoError(t, err)
	defer s.Close()
	defer s.Clear(ctx)

	assert.Equal(t, "mediremind:session:test-"+t.Name(), s.Key())

	require.NoError(t, s.SetToken(ctx, "tok-redis"))
	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-redis", token)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Token(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestContext_SetTokenPublishesOnInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c, err := NewContext(ctx, store)
	require.NoError(t, err)
	assert.False(t, c.Authenticated())

	updates, cancel := c.Subscribe()
	defer cancel()

	require.NoError(t, c.SetToken(ctx, "tok-1"))

	// Written through, but not observed yet
	stored, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)
	assert.False(t, c.Authenticated())
	select {
	case <-updates:
		t.Fatal("state published before Invalidate")
	default:
	}

	require.NoError(t, c.Invalidate(ctx))
	assert.True(t, c.Authenticated())
	assert.Equal(t, "tok-1", c.Token())

	select {
	case s := <-updates:
		assert.Equal(t, State{Token: "tok-1", Authenticated: true}, s)
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}
}

func TestContext_ClearPublishesLoggedOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SetToken(ctx, "tok-2"))

	c, err := NewContext(ctx, store)
	require.NoError(t, err)
	assert.True(t, c.Authenticated())

	updates, cancel := c.Subscribe()
	defer cancel()

	require.NoError(t, c.Clear(ctx))
	assert.False(t, c.Authenticated())
	assert.Equal(t, State{}, <-updates)
}

func TestContext_SlowSubscriberSeesLatest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c, err := NewContext(ctx, store)
	require.NoError(t, err)

	updates, cancel := c.Subscribe()
	defer cancel()

	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, c.SetToken(ctx, tok))
		require.NoError(t, c.Invalidate(ctx))
	}

	assert.Equal(t, "c", (<-updates).Token)
	select {
	case s := <-updates:
		t.Fatalf("unexpected extra state %+v", s)
	default:
	}
}

func TestContext_CancelledSubscriptionIsSkipped(t *testing.T) {
	ctx := context.Background()
	c, err := NewContext(ctx, NewMemoryStore())
	require.NoError(t, err)

	updates, cancel := c.Subscribe()
	cancel()
	cancel()

	require.NoError(t, c.SetToken(ctx, "x"))
	require.NoError(t, c.Invalidate(ctx))

	select {
	case <-updates:
		t.Fatal("cancelled subscriber received a state")
	default:
	}
}
