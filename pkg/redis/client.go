package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskadee/pkg/config"
)

// NewRedisClient 创建 Redis 客户端并检查连通性。
// Ping 失败只记录警告：Redis 仅用于事件去重，不可用时服务仍可运行。
func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis ping failed, continuing without dedup guarantees",
			zap.String("addr", cfg.Addr),
			zap.Error(fmt.Errorf("redis ping: %w", err)),
		)
	} else {
		logger.Info("Redis connection established", zap.String("addr", cfg.Addr))
	}
	return rdb
}
