package database

import (
	"context"
	"fmt"
	"smart-chat-go/pkg/log"
	"time"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 初始化 Redis 客户端并用 PING 验证连接，供 redis 存储驱动使用。
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	RDB = client
	log.Info("Redis client connected successfully")
	return client, nil
}

// CloseRedis 关闭 Redis 客户端。
func CloseRedis() {
	if RDB != nil {
		_ = RDB.Close()
	}
}
