package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPresenceMirror keeps a TTL'd last-seen key per user. It backs only
// the directory's online flag; connection routing stays in process memory.
type RedisPresenceMirror struct {
	rdb *redis.Client
}

func NewRedisPresenceMirror(rdb *redis.Client) *RedisPresenceMirror {
	return &RedisPresenceMirror{rdb: rdb}
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

func (p *RedisPresenceMirror) Touch(ctx context.Context, userID string, ttl time.Duration) error {
	return p.rdb.Set(ctx, presenceKey(userID), time.Now().Unix(), ttl).Err()
}

func (p *RedisPresenceMirror) Online(ctx context.Context, userID string) (bool, error) {
	n, err := p.rdb.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *RedisPresenceMirror) Clear(ctx context.Context, userID string) error {
	return p.rdb.Del(ctx, presenceKey(userID)).Err()
}
