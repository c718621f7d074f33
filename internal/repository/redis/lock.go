package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	sessionLockPrefix = "lock:session:"
	lockRetryInterval = 50 * time.Millisecond
)

// Deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionLock serializes turns on one chat session across server instances.
type SessionLock struct {
	client *Client
	ttl    time.Duration
}

// NewSessionLock creates a lock whose keys expire after ttl if never released.
func NewSessionLock(client *Client, ttl time.Duration) *SessionLock {
	return &SessionLock{client: client, ttl: ttl}
}

// Acquire blocks until the lock for sessionID is held or ctx is done.
func (l *SessionLock) Acquire(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	key := sessionLockPrefix + sessionID.String()
	token := uuid.NewString()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to acquire session lock: %w", err)
		}
		if ok {
			return func() {
				// Release must outlive a cancelled request context.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.client.rdb, []string{key}, token).Err(); err != nil {
					log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("failed to release session lock")
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
