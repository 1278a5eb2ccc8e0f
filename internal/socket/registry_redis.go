package socket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mindmap/mindmap-server/internal/mindmap"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mindmap:socket:"

// RedisRegistry stores issued tokens under mindmap:socket:{token} with a TTL.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRegistry uses a 5 minute TTL when ttl is not positive.
func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) Record(ctx context.Context, info *mindmap.SocketInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+info.Token, b, r.ttl).Err()
}

// Lookup returns the info recorded for token, or (nil, nil) once it expired.
func (r *RedisRegistry) Lookup(ctx context.Context, token string) (*mindmap.SocketInfo, error) {
	b, err := r.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var info mindmap.SocketInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
