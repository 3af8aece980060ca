package service

import (
	"context"
	"strconv"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/model"
)

type episodeStore interface {
	ListByAnime(animeID int) ([]model.Episode, error)
	FindByNumber(animeID, number int) (*model.Episode, error)
	CountByAnime(animeID int) (int, error)
	UpsertStreaming(ep *model.Episode) error
	UpsertFlags(animeID, number int, isFiller, isManga bool) error
	CreatePlaceholders(episodes []model.Episode) error
}

type animeMirrorStore interface {
	FindByID(id int) (*model.Anime, error)
	UpdateNextAiring(id int, next *model.AiringPointer) error
}

type fillerSource interface {
	GetFillerEpisodes(ctx context.Context, animeSlug string) []FillerEpisode
}

// EpisodeService 单集查询与同步
type EpisodeService struct {
	episodes episodeStore
	anime    animeMirrorStore
	catalog  catalogSource
	filler   fillerSource
}

// NewEpisodeService 创建单集服务
func NewEpisodeService(episodes episodeStore, anime animeMirrorStore, catalog catalogSource, filler fillerSource) *EpisodeService {
	return &EpisodeService{episodes: episodes, anime: anime, catalog: catalog, filler: filler}
}

// ListByAnime 某部动画的全部单集（带派生类型）
func (s *EpisodeService) ListByAnime(animeID int) ([]model.Episode, error) {
	episodes, err := s.episodes.ListByAnime(animeID)
	if err != nil {
		return nil, err
	}
	classifyAll(episodes)
	return episodes, nil
}

// GetByNumber 按 (animeId, number) 查单集
func (s *EpisodeService) GetByNumber(animeID, number int) (*model.Episode, error) {
	episode, err := s.episodes.FindByNumber(animeID, number)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, apperr.NotFoundf("动画 %d 没有第 %d 集", animeID, number)
	}
	episode.Classify()
	return episode, nil
}

// NextAiring 下一集放送指针，镜像里没有时返回 nil
func (s *EpisodeService) NextAiring(animeID int) (*model.AiringPointer, error) {
	anime, err := s.anime.FindByID(animeID)
	if err != nil {
		return nil, err
	}
	if anime == nil {
		return nil, apperr.NotFoundf("动画 %d 不存在", animeID)
	}
	return anime.NextAiring, nil
}

// SyncResult 同步结果
type SyncResult struct {
	Synced  int    `json:"synced"`
	Message string `json:"message"`
}

// SyncFillerData 从 animefillerlist.com 同步填充集标记
func (s *EpisodeService) SyncFillerData(ctx context.Context, animeID int, animeSlug string) (*SyncResult, error) {
	fillerData := s.filler.GetFillerEpisodes(ctx, animeSlug)
	if len(fillerData) == 0 {
		return &SyncResult{Synced: 0, Message: "没有可用的填充集数据"}, nil
	}

	synced := 0
	for _, ep := range fillerData {
		if err := s.episodes.UpsertFlags(animeID, ep.EpisodeNumber, ep.IsFiller, ep.IsManga); err != nil {
			return nil, err
		}
		synced++
	}

	return &SyncResult{Synced: synced, Message: "已同步 " + strconv.Itoa(synced) + " 集的填充标记"}, nil
}

// SyncFromCatalog 从 AniList 同步单集（流媒体单集优先，没有时补占位）
func (s *EpisodeService) SyncFromCatalog(ctx context.Context, animeID int) (*SyncResult, error) {
	media, err := s.catalog.GetAnimeByID(ctx, animeID)
	if err != nil {
		return nil, err
	}

	// 更新下一集放送指针
	if media.NextAiringEpisode != nil {
		if err := s.anime.UpdateNextAiring(animeID, media.NextAiringEpisode); err != nil {
			return nil, err
		}
	}

	synced := 0
	for _, ep := range media.StreamingEpisodes {
		m := episodeTitlePattern.FindStringSubmatch(ep.Title)
		if m == nil {
			continue
		}
		number, _ := strconv.Atoi(m[1])

		if err := s.episodes.UpsertStreaming(&model.Episode{
			AnimeID:      animeID,
			Number:       number,
			Title:        ep.Title,
			Thumbnail:    ep.Thumbnail,
			StreamingURL: ep.URL,
		}); err != nil {
			return nil, err
		}
		synced++
	}

	if synced == 0 && media.Episodes > 0 {
		placeholders := make([]model.Episode, 0, media.Episodes)
		for number := 1; number <= media.Episodes; number++ {
			placeholders = append(placeholders, model.Episode{
				AnimeID: animeID,
				Number:  number,
				Title:   "Episode " + strconv.Itoa(number),
			})
		}
		if err := s.episodes.CreatePlaceholders(placeholders); err != nil {
			return nil, err
		}
		synced = len(placeholders)
	}

	return &SyncResult{Synced: synced, Message: "已从 AniList 同步 " + strconv.Itoa(synced) + " 集"}, nil
}
