package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis returns nil when no address is configured; callers fall back to
// the row lock alone.
func InitRedis(ctx context.Context, addr, password string, logger *zap.Logger) *redis.Client {
	if addr == "" {
		logger.Warn("REDIS_ADDR not set, reference lock disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("Redis connection failed", zap.String("addr", addr), zap.Error(err))
	} else {
		logger.Info("Redis connection successful", zap.String("addr", addr))
	}
	return client
}
