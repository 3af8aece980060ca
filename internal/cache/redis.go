package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis 基于 Redis 的缓存实现
type Redis struct {
	client *redis.Client
}

// NewRedis 连接 Redis 并返回缓存实例
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	log.Printf("[Cache] Redis 已连接: %s", addr)
	return &Redis{client: client}, nil
}

// GetJSON 读缓存，任何错误都按未命中处理
func (r *Redis) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] 读取失败 (key=%s): %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[Cache] 反序列化失败 (key=%s): %v", key, err)
		return false
	}
	return true
}

// SetJSON 写缓存，失败只记日志
func (r *Redis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] 序列化失败 (key=%s): %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[Cache] 写入失败 (key=%s): %v", key, err)
	}
}

// Delete 删除单个键
func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[Cache] 删除失败 (key=%s): %v", key, err)
	}
}

// InvalidatePattern 用 SCAN 遍历匹配键并删除，避免 KEYS 阻塞
func (r *Redis) InvalidatePattern(ctx context.Context, pattern string) {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[Cache] 扫描失败 (pattern=%s): %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[Cache] 批量删除失败 (pattern=%s): %v", pattern, err)
	}
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.client.Close()
}
