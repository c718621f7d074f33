package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/estate-chat/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	schemaCachePrefix = "schema:"
	schemaCacheTTL    = 5 * time.Minute
)

// SchemaCache stores warehouse schema DDL keyed by source name.
type SchemaCache struct {
	client *Client
}

// NewSchemaCache creates a new schema cache
func NewSchemaCache(client *Client) *SchemaCache {
	return &SchemaCache{client: client}
}

// Get returns (nil, nil) on a cache miss.
func (c *SchemaCache) Get(ctx context.Context, source string) (*domain.SchemaInfo, error) {
	data, err := c.client.rdb.Get(ctx, schemaCachePrefix+source).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached schema: %w", err)
	}

	var schema domain.SchemaInfo
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	return &schema, nil
}

// Set caches schema for a source
func (c *SchemaCache) Set(ctx context.Context, source string, schema *domain.SchemaInfo) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return c.client.rdb.Set(ctx, schemaCachePrefix+source, data, schemaCacheTTL).Err()
}

// FlushAll removes all cached schemas
func (c *SchemaCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := schemaCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
