package service

import (
	"context"
	"time"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/model"
)

type listStore interface {
	Find(userID, animeID int) (*model.AnimeList, error)
	Create(entry *model.AnimeList) error
	Save(entry *model.AnimeList) error
	Delete(userID, animeID int) error
	ListByUser(userID int, status model.ListStatus) ([]model.AnimeList, error)
}

type activityStore interface {
	Record(userID int, typ model.ActivityType, metadata model.JSONMap) error
}

type animeProvider interface {
	GetAnime(ctx context.Context, id int) (*model.Anime, FetchSource, error)
}

// ListService 追番列表状态机
// 状态没有终态：COMPLETED、DROPPED 都可以再改回来
type ListService struct {
	lists      listStore
	activities activityStore
	anime      animeProvider
	cache      cache.Store
}

// NewListService 创建追番服务
func NewListService(lists listStore, activities activityStore, anime animeProvider, store cache.Store) *ListService {
	return &ListService{lists: lists, activities: activities, anime: anime, cache: store}
}

// CreateListInput 新建追番条目的请求
type CreateListInput struct {
	AnimeID    int              `json:"animeId" binding:"required"`
	Status     model.ListStatus `json:"status" binding:"required,liststatus"`
	Score      *int             `json:"score" binding:"omitempty,min=0,max=10"`
	Progress   int              `json:"progress" binding:"min=0"`
	Notes      string           `json:"notes"`
	IsFavorite bool             `json:"isFavorite"`
}

// Create 新建追番条目
// 初始状态完全由请求决定：WATCHING 记 startedAt，COMPLETED 记 completedAt
func (s *ListService) Create(ctx context.Context, userID int, in CreateListInput) (*model.AnimeList, error) {
	existing, err := s.lists.Find(userID, in.AnimeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflictf("动画 %d 已在追番列表里", in.AnimeID)
	}

	// 顺便把动画数据拉进镜像
	anime, _, err := s.anime.GetAnime(ctx, in.AnimeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &model.AnimeList{
		UserID:     userID,
		AnimeID:    in.AnimeID,
		Status:     in.Status,
		Score:      in.Score,
		Progress:   in.Progress,
		Notes:      in.Notes,
		IsFavorite: in.IsFavorite,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Status == model.StatusWatching {
		entry.StartedAt = &now
	}
	if in.Status == model.StatusCompleted {
		entry.CompletedAt = &now
	}

	if err := s.lists.Create(entry); err != nil {
		return nil, err
	}
	entry.Anime = anime

	if err := s.activities.Record(userID, model.ActivityListUpdate, model.JSONMap{
		"animeId":    in.AnimeID,
		"status":     string(in.Status),
		"animeTitle": anime.PreferredTitle(),
	}); err != nil {
		return nil, err
	}

	return entry, nil
}

// Get 查单个追番条目
func (s *ListService) Get(userID, animeID int) (*model.AnimeList, error) {
	entry, err := s.lists.Find(userID, animeID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperr.NotFoundf("追番条目不存在 (animeId=%d)", animeID)
	}
	return entry, nil
}

// ListByUser 用户的追番列表，status 为空取全部
func (s *ListService) ListByUser(userID int, status model.ListStatus) ([]model.AnimeList, error) {
	return s.lists.ListByUser(userID, status)
}

// UpdateListInput 更新追番条目的请求，nil 字段不变
type UpdateListInput struct {
	Status     *model.ListStatus `json:"status" binding:"omitempty,liststatus"`
	Score      *int              `json:"score" binding:"omitempty,min=0,max=10"`
	Notes      *string           `json:"notes"`
	IsFavorite *bool             `json:"isFavorite"`
}

// Update 通用字段更新
// 状态改成 COMPLETED 时记 completedAt 并发动态；改成其他状态则清掉 completedAt
func (s *ListService) Update(userID, animeID int, in UpdateListInput) (*model.AnimeList, error) {
	entry, err := s.lists.Find(userID, animeID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperr.NotFoundf("追番条目不存在 (animeId=%d)", animeID)
	}

	scoreChanged := false
	if in.Score != nil {
		scoreChanged = entry.Score == nil || *entry.Score != *in.Score
		entry.Score = in.Score
	}
	if in.Notes != nil {
		entry.Notes = *in.Notes
	}
	if in.IsFavorite != nil {
		entry.IsFavorite = *in.IsFavorite
	}

	completed := false
	if in.Status != nil {
		now := time.Now()
		entry.Status = *in.Status

		if *in.Status == model.StatusCompleted {
			entry.CompletedAt = &now
			completed = true
		} else {
			entry.CompletedAt = nil
		}
		if *in.Status == model.StatusWatching && entry.StartedAt == nil {
			entry.StartedAt = &now
		}
	}

	entry.UpdatedAt = time.Now()
	if err := s.lists.Save(entry); err != nil {
		return nil, err
	}

	if completed {
		if err := s.recordCompleted(userID, entry); err != nil {
			return nil, err
		}
	}

	// 评分变了就让推荐缓存失效
	if scoreChanged {
		s.cache.Delete(context.Background(), cache.KeyRecommendations(userID))
	}

	return entry, nil
}

// SetProgress 更新观看进度并驱动状态机
// 进度夹取到 [0, totalEpisodes]；追平总集数转 COMPLETED，
// 进度大于 0 且还是 PLAN_TO_WATCH 则转 WATCHING
func (s *ListService) SetProgress(userID, animeID, progress int) (*model.AnimeList, error) {
	entry, err := s.lists.Find(userID, animeID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperr.NotFoundf("追番条目不存在，请先把动画加进列表 (animeId=%d)", animeID)
	}

	// 总集数未知（0）时只做下限夹取
	totalEpisodes := 0
	if entry.Anime != nil {
		totalEpisodes = entry.Anime.EpisodeCount
	}
	if progress < 0 {
		progress = 0
	}
	if totalEpisodes > 0 && progress > totalEpisodes {
		progress = totalEpisodes
	}

	now := time.Now()
	completed := false

	if progress == totalEpisodes && totalEpisodes > 0 {
		entry.Status = model.StatusCompleted
		entry.CompletedAt = &now
		completed = true
	} else if progress > 0 && entry.Status == model.StatusPlanToWatch {
		entry.Status = model.StatusWatching
	}

	if entry.StartedAt == nil && progress > 0 {
		entry.StartedAt = &now
	}

	entry.Progress = progress
	entry.UpdatedAt = now
	if err := s.lists.Save(entry); err != nil {
		return nil, err
	}

	if completed {
		if err := s.recordCompleted(userID, entry); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// IncrementProgress 进度 +1 的语法糖
func (s *ListService) IncrementProgress(userID, animeID int) (*model.AnimeList, error) {
	entry, err := s.lists.Find(userID, animeID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperr.NotFoundf("追番条目不存在，请先把动画加进列表 (animeId=%d)", animeID)
	}
	return s.SetProgress(userID, animeID, entry.Progress+1)
}

// Delete 删除追番条目
func (s *ListService) Delete(userID, animeID int) error {
	entry, err := s.lists.Find(userID, animeID)
	if err != nil {
		return err
	}
	if entry == nil {
		return apperr.NotFoundf("追番条目不存在 (animeId=%d)", animeID)
	}
	if err := s.lists.Delete(userID, animeID); err != nil {
		return err
	}
	// 删掉带评分的条目也会影响推荐
	if entry.Score != nil {
		s.cache.Delete(context.Background(), cache.KeyRecommendations(userID))
	}
	return nil
}

// recordCompleted 发完结动态
func (s *ListService) recordCompleted(userID int, entry *model.AnimeList) error {
	title := "Unknown"
	if entry.Anime != nil {
		title = entry.Anime.PreferredTitle()
	}
	metadata := model.JSONMap{
		"animeId":    entry.AnimeID,
		"animeTitle": title,
	}
	if entry.Score != nil {
		metadata["score"] = *entry.Score
	}
	return s.activities.Record(userID, model.ActivityAnimeCompleted, metadata)
}
