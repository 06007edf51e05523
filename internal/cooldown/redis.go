package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownKeyPrefix = "cooldown:"

// RedisStore shares cooldown state across instances. Keys carry the
// window as their TTL, so expiry needs no sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) redisKey(userID, domain string) string {
	return fmt.Sprintf("%s%s:%s", cooldownKeyPrefix, userID, domain)
}

func (r *RedisStore) Active(ctx context.Context, userID, domain string) (bool, error) {
	val, err := r.client.Exists(ctx, r.redisKey(userID, domain)).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown exists: %w", err)
	}
	return val == 1, nil
}

func (r *RedisStore) Touch(ctx context.Context, userID, domain string, window time.Duration) error {
	// SETEX is atomic and sets the key with the window as expiry.
	if err := r.client.SetEx(ctx, r.redisKey(userID, domain), "1", window).Err(); err != nil {
		return fmt.Errorf("cooldown setex: %w", err)
	}
	return nil
}
