// Package cache 提供 Redis 客户端封装，供分布式限流使用
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/smilepricing/pkg/logger"
)

// Config Redis 配置
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	MaxPoolSize  int
	ConnTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// Addr 连接地址
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Options 转换为 go-redis 连接选项
func (c Config) Options() *redis.Options {
	return &redis.Options{
		Addr:            c.Addr(),
		Password:        c.Password,
		DB:              c.DB,
		PoolSize:        c.MaxPoolSize,
		DialTimeout:     time.Duration(c.ConnTimeout) * time.Second,
		ConnMaxIdleTime: time.Duration(c.ConnTimeout) * time.Second,
		ReadTimeout:     time.Duration(c.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(c.WriteTimeout) * time.Second,
	}
}

// NewClient 创建 Redis 客户端并测试连接
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(cfg.Options())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info(ctx, "Redis connected successfully", "addr", cfg.Addr(), "db", cfg.DB)
	return client, nil
}
