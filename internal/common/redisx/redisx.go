package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// key 约定与 TTL：订单状态读缓存（GET /orders/{id} 快路径）。
// DB 永远是真相，缓存只加速读取。
const (
	KeyOrderStatus = "order:%s:status" // order_id
	TTLStatusCache = 60 * time.Second
)

// NewClient 创建 Redis 客户端并做一次连通性探测。
func NewClient(host string, port int, password string, db, poolSize int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return c, nil
}

// SetOrderStatus 写入订单状态缓存（错误由调用方决定是否忽略）。
func SetOrderStatus(ctx context.Context, c *redis.Client, orderID string, payload []byte) error {
	if c == nil {
		return nil
	}
	return c.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), payload, TTLStatusCache).Err()
}

// GetOrderStatus 读取订单状态缓存；未命中返回空串。
func GetOrderStatus(ctx context.Context, c *redis.Client, orderID string) (string, error) {
	if c == nil {
		return "", nil
	}
	s, err := c.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return s, err
}

// DelOrderStatus 失效订单状态缓存（状态变更后调用）。
func DelOrderStatus(ctx context.Context, c *redis.Client, orderID string) error {
	if c == nil {
		return nil
	}
	return c.Del(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Err()
}
