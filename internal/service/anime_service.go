package service

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"time"

	"github.com/user/anitrack/internal/model"
)

// FetchSource 标记一次动画详情请求实际走了哪条路径，测试和调用方据此断言
type FetchSource string

const (
	// SourceMirror 本地镜像命中且在新鲜窗口内
	SourceMirror FetchSource = "mirror"
	// SourceUpstream 上游拉取并成功落库
	SourceUpstream FetchSource = "upstream"
	// SourceUpstreamUncommitted 上游拉取成功但落库失败（牺牲持久性保可用性）
	SourceUpstreamUncommitted FetchSource = "upstream-uncommitted"
)

// 镜像行的新鲜窗口
const mirrorFreshness = 24 * time.Hour

// 从流媒体单集标题里提取开头的集数，如 "Episode 3 - xxx"
var episodeTitlePattern = regexp.MustCompile(`(?i)^Episode\s+(\d+)`)

type catalogSource interface {
	GetAnimeByID(ctx context.Context, id int) (*AniListMedia, error)
}

type animeStore interface {
	FindByID(id int) (*model.Anime, error)
	Upsert(anime *model.Anime) error
}

type episodeBackfillStore interface {
	CountByAnime(animeID int) (int, error)
	ListByAnime(animeID int) ([]model.Episode, error)
	UpsertStreaming(ep *model.Episode) error
	CreatePlaceholders(episodes []model.Episode) error
}

// AnimeService 持久化镜像：本地优先、过期回源、写失败不拦截响应
type AnimeService struct {
	catalog  catalogSource
	anime    animeStore
	episodes episodeBackfillStore
}

// NewAnimeService 创建镜像服务
func NewAnimeService(catalog catalogSource, anime animeStore, episodes episodeBackfillStore) *AnimeService {
	return &AnimeService{catalog: catalog, anime: anime, episodes: episodes}
}

// GetAnime 获取动画详情
// 1. 镜像行在 24 小时内刷新过则直接返回
// 2. 否则回源拉取并 upsert，单集补录异步执行、不阻塞响应
// 3. 读失败降级为直接回源；写失败时把上游数据原样返回
func (s *AnimeService) GetAnime(ctx context.Context, id int) (*model.Anime, FetchSource, error) {
	cached, err := s.anime.FindByID(id)
	if err != nil {
		log.Printf("[Anime] 镜像读取失败，直接回源 (id=%d): %v", id, err)
		cached = nil
	}

	if cached != nil && cached.IsFresh(mirrorFreshness) {
		classifyAll(cached.EpisodeList)
		return cached, SourceMirror, nil
	}

	// 回源拉取
	media, err := s.catalog.GetAnimeByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	anime := media.ToModel()
	if err := s.anime.Upsert(anime); err != nil {
		log.Printf("[Anime] 镜像写入失败，直接返回上游数据 (id=%d): %v", id, err)
		return anime, SourceUpstreamUncommitted, nil
	}

	// 单集补录：不阻塞主响应，失败只记日志
	s.backfillAsync(id, media)

	// 带上当前已有的单集列表
	if episodes, err := s.episodes.ListByAnime(id); err == nil {
		anime.EpisodeList = episodes
	} else {
		log.Printf("[Anime] 单集列表读取失败 (id=%d): %v", id, err)
	}
	classifyAll(anime.EpisodeList)

	return anime, SourceUpstream, nil
}

// backfillAsync 派生单集记录的后台任务
func (s *AnimeService) backfillAsync(id int, media *AniListMedia) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Anime] 单集补录发生恐慌 (id=%d): %v", id, r)
			}
		}()
		if err := s.BackfillEpisodes(id, media); err != nil {
			log.Printf("[Anime] 单集补录失败 (id=%d): %v", id, err)
		}
	}()
}

// BackfillEpisodes 从上游数据派生单集记录
// 先按流媒体单集标题解析集数写入；没有任何单集时按总集数补占位
func (s *AnimeService) BackfillEpisodes(id int, media *AniListMedia) error {
	for _, ep := range media.StreamingEpisodes {
		m := episodeTitlePattern.FindStringSubmatch(ep.Title)
		if m == nil {
			// 标题里解析不出集数的条目直接跳过
			continue
		}
		number, _ := strconv.Atoi(m[1])

		if err := s.episodes.UpsertStreaming(&model.Episode{
			AnimeID:      id,
			Number:       number,
			Title:        ep.Title,
			Thumbnail:    ep.Thumbnail,
			StreamingURL: ep.URL,
		}); err != nil {
			return err
		}
	}

	count, err := s.episodes.CountByAnime(id)
	if err != nil {
		return err
	}
	if count > 0 || media.Episodes <= 0 {
		return nil
	}

	// 没有流媒体单集时按总集数补占位
	placeholders := make([]model.Episode, 0, media.Episodes)
	for number := 1; number <= media.Episodes; number++ {
		placeholders = append(placeholders, model.Episode{
			AnimeID: id,
			Number:  number,
			Title:   "Episode " + strconv.Itoa(number),
		})
	}
	log.Printf("[Anime] 为动画 %d 补建 %d 条占位单集", id, len(placeholders))
	return s.episodes.CreatePlaceholders(placeholders)
}

// classifyAll 为返回给调用方的单集统一填充派生类型
func classifyAll(episodes []model.Episode) {
	for i := range episodes {
		episodes[i].Classify()
	}
}
