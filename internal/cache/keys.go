package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	TopicsListKey = "topics:list"
)

const (
	UserTTL   = 5 * time.Minute
	TopicsTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Aside is a cache-aside read: on a hit dest is populated from Redis, on a
// miss load runs and its result is stored under key for ttl. Cache failures
// degrade to the loader; they are never surfaced to callers.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client != nil {
		if raw, err := client.Get(ctx, key).Bytes(); err == nil {
			if json.Unmarshal(raw, dest) == nil {
				return nil
			}
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateTopics(ctx context.Context) {
	Invalidate(ctx, TopicsListKey)
}
