package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory 进程内缓存实现，未配置 Redis 时使用（开发环境、测试）
// 值同样走 JSON 序列化，保证和 Redis 路径的行为一致
type Memory struct {
	store *gocache.Cache
}

// NewMemory 创建进程内缓存
func NewMemory() *Memory {
	// 清理间隔 10 分钟，过期时间由每次写入指定
	return &Memory{store: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// GetJSON 读缓存
func (m *Memory) GetJSON(_ context.Context, key string, dest interface{}) bool {
	v, ok := m.store.Get(key)
	if !ok {
		return false
	}
	data, ok := v.([]byte)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[Cache] 反序列化失败 (key=%s): %v", key, err)
		return false
	}
	return true
}

// SetJSON 写缓存
func (m *Memory) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] 序列化失败 (key=%s): %v", key, err)
		return
	}
	m.store.Set(key, data, ttl)
}

// Delete 删除单个键
func (m *Memory) Delete(_ context.Context, key string) {
	m.store.Delete(key)
}

// InvalidatePattern 只支持尾部 * 的前缀模式，代码里也只用到这种形状
func (m *Memory) InvalidatePattern(_ context.Context, pattern string) {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.store.Items() {
		if strings.HasPrefix(key, prefix) {
			m.store.Delete(key)
		}
	}
}
