package service

import (
	"context"
	"log"
	"time"

	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/model"
)

type releasingStore interface {
	ListReleasing() ([]model.Anime, error)
}

// SyncService 后台定时同步：把连载中动画的集数和填充标记刷到最新
type SyncService struct {
	anime    releasingStore
	episodes *EpisodeService
	cache    cache.Store
	interval time.Duration
	stop     chan struct{}
}

// NewSyncService 创建同步服务
func NewSyncService(anime releasingStore, episodes *EpisodeService, store cache.Store, interval time.Duration) *SyncService {
	return &SyncService{
		anime:    anime,
		episodes: episodes,
		cache:    store,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start 启动定时同步循环
func (s *SyncService) Start() {
	go func() {
		log.Printf("[Sync] 定时同步已启动，间隔 %s", s.interval)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				log.Println("[Sync] 定时同步已停止")
				return
			}
		}
	}()
}

// Stop 停止同步循环
func (s *SyncService) Stop() {
	close(s.stop)
}

// runOnce 同步一轮连载中的动画
// 单部动画失败只记日志，不中断整轮
func (s *SyncService) runOnce() {
	releasing, err := s.anime.ListReleasing()
	if err != nil {
		log.Printf("[Sync] 查询连载中动画失败: %v", err)
		return
	}
	if len(releasing) == 0 {
		return
	}
	log.Printf("[Sync] 开始同步 %d 部连载中的动画", len(releasing))

	ctx := context.Background()
	for i := range releasing {
		s.syncAnime(ctx, &releasing[i])
	}
}

func (s *SyncService) syncAnime(ctx context.Context, anime *model.Anime) {
	// 删掉详情缓存，强制下一次走上游拿最新数据
	s.cache.Delete(ctx, cache.KeyAnime(anime.ID))

	if _, err := s.episodes.SyncFromCatalog(ctx, anime.ID); err != nil {
		log.Printf("[Sync] 同步动画 %d 的集数失败: %v", anime.ID, err)
		return
	}

	slug := SuggestSlug(anime.TitleRomaji)
	if slug == "" {
		return
	}
	if _, err := s.episodes.SyncFillerData(ctx, anime.ID, slug); err != nil {
		log.Printf("[Sync] 同步动画 %d 的填充标记失败: %v", anime.ID, err)
	}
}
