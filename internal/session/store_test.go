// internal/session/store_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/database"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "ya29.access",
		TokenType:    "Bearer",
		RefreshToken: "1//refresh",
		Expiry:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Both backings must behave identically.
func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "abc", testToken()))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", got.AccessToken)
	assert.Equal(t, "1//refresh", got.RefreshToken)
	assert.True(t, got.Expiry.Equal(testToken().Expiry))

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "never-existed"))
}

// ==========================
// Memory backing
// ==========================

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), "abc", testToken()))

	now = now.Add(30 * time.Second)
	_, err := store.Get(context.Background(), "abc")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ExpiredGetKeepsConcurrentSave(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(context.Background(), "abc", testToken()))

	now = now.Add(2 * time.Minute)
	fresh := testToken()
	fresh.AccessToken = "ya29.fresh"
	saved := false
	store.now = func() time.Time {
		// Runs between the read and the delete, as a racing Save would.
		if !saved {
			saved = true
			store.entries["abc"] = memoryEntry{token: *fresh, expiresAt: now.Add(time.Minute)}
		}
		return now
	}

	_, err := store.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := store.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "ya29.fresh", got.AccessToken)
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.Save(context.Background(), "abc", testToken()))

	got, err := store.Get(context.Background(), "abc")
	require.NoError(t, err)
	got.AccessToken = "mutated"

	again, err := store.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", again.AccessToken)
}

// ==========================
// Redis backing
// ==========================

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	runStoreContract(t, NewRedisStore(client, time.Hour))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, 24*time.Hour)
	require.NoError(t, store.Save(context.Background(), "abc", testToken()))

	assert.Equal(t, 24*time.Hour, mr.TTL(keyPrefix+"abc"))

	mr.FastForward(25 * time.Hour)
	_, err = store.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(keyPrefix + "abc").SetVal("not-json")

	_, err := NewRedisStore(client, time.Hour).Get(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(keyPrefix + "abc").RedisNil()

	_, err := NewRedisStore(client, time.Hour).Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ==========================
// Construction helpers
// ==========================

func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestNewFromConfig(t *testing.T) {
	store, err := NewFromConfig(config.SessionConfig{Store: "memory", TTL: 1000}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = NewFromConfig(config.SessionConfig{Store: "redis"}, nil)
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rc, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)

	store, err = NewFromConfig(config.SessionConfig{Store: "redis"}, rc)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	_, err = NewFromConfig(config.SessionConfig{Store: "disk"}, nil)
	assert.Error(t, err)
}
