package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	chatCachePrefix     = "chatname:"
	DefaultChatCacheTTL = 10 * time.Minute
)

// ChatCache caches chat names. Member lists must always be read fresh.
type ChatCache struct {
	client *Client
	ttl    time.Duration
}

// NewChatCache creates a new chat name cache
func NewChatCache(client *Client, ttl time.Duration) *ChatCache {
	if ttl <= 0 {
		ttl = DefaultChatCacheTTL
	}
	return &ChatCache{client: client, ttl: ttl}
}

func chatKey(chatID primitive.ObjectID) string {
	return chatCachePrefix + chatID.Hex()
}

// GetName returns the cached chat name. ok is false on a cache miss.
func (c *ChatCache) GetName(ctx context.Context, chatID primitive.ObjectID) (string, bool, error) {
	name, err := c.client.rdb.Get(ctx, chatKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read chat cache: %w", err)
	}
	return name, true, nil
}

// SetName caches a chat name. Empty names are cached too.
func (c *ChatCache) SetName(ctx context.Context, chatID primitive.ObjectID, name string) error {
	if err := c.client.rdb.Set(ctx, chatKey(chatID), name, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write chat cache: %w", err)
	}
	return nil
}

// FlushAll removes all cached chat names
func (c *ChatCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := chatCachePrefix + "*"
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
