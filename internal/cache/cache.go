package cache

import (
	"context"
	"fmt"
	"time"
)

// Store 键值缓存的旁路封装。底层存储的任何故障都在这一层吸收：
// 读失败按未命中处理，写失败直接吞掉（仅记日志），系统正确性不依赖缓存可用性。
type Store interface {
	// GetJSON 读取并反序列化到 dest，命中返回 true；读失败视为未命中
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	// SetJSON 序列化写入并设置过期时间，失败不返回错误
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
	// Delete 删除单个键
	Delete(ctx context.Context, key string)
	// InvalidatePattern 按通配模式批量失效（如 anilist:search:*）
	InvalidatePattern(ctx context.Context, pattern string)
}

// 各类查询的 TTL（对齐上游数据的变化频率）
const (
	TTLSearch          = 24 * time.Hour
	TTLAnimeDetail     = 24 * time.Hour
	TTLAiringSchedule  = time.Hour
	TTLTrending        = time.Hour
	TTLRecommendations = time.Hour
	TTLFillerList      = 30 * 24 * time.Hour
)

// 缓存键，统一在这里拼，保证同一逻辑查询的键是确定的
func KeyAnime(id int) string {
	return fmt.Sprintf("anilist:anime:%d", id)
}

func KeyAiring(page, perPage int, notYetAired bool) string {
	return fmt.Sprintf("anilist:airing:%d:%d:%t", page, perPage, notYetAired)
}

func KeyTrending(page, perPage int) string {
	return fmt.Sprintf("anilist:trending:%d:%d", page, perPage)
}

func KeyRecommendations(userID int) string {
	return fmt.Sprintf("recommendations:%d", userID)
}

func KeyFillerList(slug string) string {
	return fmt.Sprintf("fillerlist:%s", slug)
}
