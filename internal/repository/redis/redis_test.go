package redis

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Rrens/estate-chat/internal/config"
	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to REDIS_TEST_ADDR (host:port) and uses DB 15.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set - run as integration test")
	}

	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := NewClient(context.Background(), config.RedisConfig{Host: host, Port: port, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() {
		client.rdb.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestSchemaCache(t *testing.T) {
	ctx := context.Background()
	cache := NewSchemaCache(newTestClient(t))

	got, err := cache.Get(ctx, "estate")
	require.NoError(t, err)
	assert.Nil(t, got)

	schema := &domain.SchemaInfo{DatabaseType: "postgres", Tables: []string{"metrics_vals"}, DDL: "CREATE TABLE metrics_vals ();"}
	require.NoError(t, cache.Set(ctx, "estate", schema))

	got, err = cache.Get(ctx, "estate")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schema.DDL, got.DDL)

	deleted, err := cache.FlushAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	limiter := NewRateLimiter(newTestClient(t), 1, 1)
	key := uuid.NewString()

	for i := 0; i < 2; i++ {
		allowed, _, _, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, remaining, reset, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestSessionLock(t *testing.T) {
	lock := NewSessionLock(newTestClient(t), time.Minute)
	sessionID := uuid.New()

	release, err := lock.Acquire(context.Background(), sessionID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = lock.Acquire(ctx, sessionID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	release2, err := lock.Acquire(context.Background(), sessionID)
	require.NoError(t, err)
	release2()
}

func TestSessionLock_ReleaseFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	client := newTestClient(t)
	lock := NewSessionLock(client, time.Minute)

	release, err := lock.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, client.rdb.Close())
	release()

	assert.Contains(t, buf.String(), "failed to release session lock")
}
