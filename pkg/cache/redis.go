package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db, poolSize, minIdleConns int) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	})

	return &RedisClient{client: client}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

const revokedTokenPrefix = "auth:revoked:"

// RevokeToken records a logged-out JWT until its natural expiry, so the
// middleware can reject it even though the signature stays valid.
func (r *RedisClient) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to revoke.
		return nil
	}
	return r.client.Set(ctx, revokedTokenPrefix+token, "1", ttl).Err()
}

func (r *RedisClient) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedTokenPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
