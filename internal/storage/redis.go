package storage

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/unitychat/unitychat/config"
)

// RedisClient wraps the redis connection with the presence helpers the
// auth flow uses. The raw client is exposed for the rate limiter.
type RedisClient struct {
	client *redis.Client
}

func InitRedis(cfg *config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: rdb}, nil
}

// NewRedisClient wraps an already-connected client. Used by tests and
// by setups that manage the connection themselves.
func NewRedisClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}

func (c *RedisClient) GetClient() *redis.Client {
	return c.client
}

func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// SetUserOnline refreshes the presence key for a user.
func (c *RedisClient) SetUserOnline(ctx context.Context, userID uint, ttl time.Duration) error {
	key := presenceKey(userID)
	if err := c.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set user %d online: %w", userID, err)
	}
	return nil
}

// RemoveUserOnline drops the presence key on logout.
func (c *RedisClient) RemoveUserOnline(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear presence for user %d: %w", userID, err)
	}
	return nil
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("user:%d:online", userID)
}
