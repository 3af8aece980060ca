package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/model"
	"golang.org/x/sync/singleflight"
)

// AniListClient AniList GraphQL 目录客户端
// 每次调用都套一层缓存旁路；上游失败统一映射为 apperr.ErrUpstream，不做重试
type AniListClient struct {
	endpoint string
	cache    cache.Store
	client   *http.Client
	sf       singleflight.Group // 防止并发重复请求同一查询
}

// NewAniListClient 创建目录客户端
func NewAniListClient(endpoint string, store cache.Store) *AniListClient {
	return &AniListClient{
		endpoint: endpoint,
		cache:    store,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SearchParams 搜索过滤条件
type SearchParams struct {
	Search     string `form:"search"`
	Page       int    `form:"page"`
	PerPage    int    `form:"perPage"`
	Season     string `form:"season"`
	SeasonYear int    `form:"seasonYear"`
	Genre      string `form:"genre"`
	Status     string `form:"status"`
}

// cacheKey 参数的确定性序列化（字段顺序固定）
func (p SearchParams) cacheKey() string {
	return fmt.Sprintf("anilist:search:%s:%d:%d:%s:%d:%s:%s",
		p.Search, p.Page, p.PerPage, p.Season, p.SeasonYear, p.Genre, p.Status)
}

// AniListDate AniList 的年月日结构
type AniListDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Time 转为时间指针，年份缺失时返回 nil
func (d AniListDate) Time() *time.Time {
	if d.Year == 0 {
		return nil
	}
	month := d.Month
	if month == 0 {
		month = 1
	}
	day := d.Day
	if day == 0 {
		day = 1
	}
	t := time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

// StreamingEpisode 上游的流媒体单集
type StreamingEpisode struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// AniListMedia 上游返回的动画条目
type AniListMedia struct {
	ID          int             `json:"id"`
	Title       model.TitleSet  `json:"title"`
	Description string          `json:"description"`
	CoverImage  struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"coverImage"`
	BannerImage  string `json:"bannerImage"`
	Genres       []string `json:"genres"`
	Tags         []struct {
		Name string `json:"name"`
	} `json:"tags"`
	AverageScore int         `json:"averageScore"`
	Popularity   int         `json:"popularity"`
	Episodes     int         `json:"episodes"`
	Status       string      `json:"status"`
	Season       string      `json:"season"`
	SeasonYear   int         `json:"seasonYear"`
	Format       string      `json:"format"`
	StartDate    AniListDate `json:"startDate"`
	EndDate      AniListDate `json:"endDate"`
	Studios      struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"studios"`
	ExternalLinks     []model.ExternalLink  `json:"externalLinks"`
	StreamingEpisodes []StreamingEpisode    `json:"streamingEpisodes"`
	NextAiringEpisode *model.AiringPointer  `json:"nextAiringEpisode"`
}

// ToModel 把上游条目映射为本地镜像行
func (m *AniListMedia) ToModel() *model.Anime {
	tags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, t.Name)
	}
	studios := make([]string, 0, len(m.Studios.Nodes))
	for _, s := range m.Studios.Nodes {
		studios = append(studios, s.Name)
	}

	return &model.Anime{
		ID:            m.ID,
		TitleRomaji:   m.Title.Romaji,
		TitleEnglish:  m.Title.English,
		TitleNative:   m.Title.Native,
		Description:   m.Description,
		CoverImage:    m.CoverImage.Large,
		BannerImage:   m.BannerImage,
		Genres:        m.Genres,
		Tags:          tags,
		AverageScore:  m.AverageScore,
		Popularity:    m.Popularity,
		EpisodeCount:  m.Episodes,
		Status:        m.Status,
		Season:        m.Season,
		SeasonYear:    m.SeasonYear,
		Format:        m.Format,
		StartDate:     m.StartDate.Time(),
		EndDate:       m.EndDate.Time(),
		Studios:       studios,
		ExternalLinks: m.ExternalLinks,
		NextAiring:    m.NextAiringEpisode,
	}
}

// PageInfo 分页信息
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
}

// SearchPage 搜索/热门结果页
type SearchPage struct {
	PageInfo PageInfo       `json:"pageInfo"`
	Media    []AniListMedia `json:"media"`
}

// AiringEntry 放送日程条目
type AiringEntry struct {
	ID              int          `json:"id"`
	AiringAt        int64        `json:"airingAt"`
	TimeUntilAiring int64        `json:"timeUntilAiring"`
	Episode         int          `json:"episode"`
	Media           AniListMedia `json:"media"`
}

// AiringPage 放送日程结果页
type AiringPage struct {
	PageInfo        PageInfo      `json:"pageInfo"`
	AiringSchedules []AiringEntry `json:"airingSchedules"`
}

// 公共字段片段，各查询拼装时复用
const mediaFields = `
	id
	title { romaji english native }
	description
	coverImage { large medium }
	bannerImage
	genres
	tags { name }
	averageScore
	popularity
	episodes
	status
	season
	seasonYear
	format
	startDate { year month day }
	endDate { year month day }
	studios(isMain: true) { nodes { name } }
	externalLinks { url site }`

const searchQuery = `
query ($page: Int, $perPage: Int, $search: String, $season: MediaSeason, $seasonYear: Int, $genre: String, $status: MediaStatus) {
	Page(page: $page, perPage: $perPage) {
		pageInfo { total currentPage lastPage hasNextPage }
		media(search: $search, season: $season, seasonYear: $seasonYear, genre: $genre, status: $status, type: ANIME, sort: POPULARITY_DESC) {` + mediaFields + `
		}
	}
}`

const animeByIDQuery = `
query ($id: Int) {
	Media(id: $id, type: ANIME) {` + mediaFields + `
		streamingEpisodes { title thumbnail url }
		nextAiringEpisode { airingAt timeUntilAiring episode }
	}
}`

const airingQuery = `
query ($page: Int, $perPage: Int, $notYetAired: Boolean) {
	Page(page: $page, perPage: $perPage) {
		pageInfo { total currentPage lastPage hasNextPage }
		airingSchedules(notYetAired: $notYetAired, sort: TIME) {
			id
			airingAt
			timeUntilAiring
			episode
			media {
				id
				title { romaji english native }
				coverImage { large medium }
				bannerImage
				genres
				averageScore
				popularity
			}
		}
	}
}`

const trendingQuery = `
query ($page: Int, $perPage: Int) {
	Page(page: $page, perPage: $perPage) {
		media(sort: TRENDING_DESC, type: ANIME) {
			id
			title { romaji english native }
			coverImage { large medium }
			averageScore
			popularity
			genres
			status
			episodes
			format
		}
	}
}`

// SearchAnime 按条件搜索动画
func (c *AniListClient) SearchAnime(ctx context.Context, params SearchParams) (*SearchPage, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = 20
	}
	key := params.cacheKey()

	var page SearchPage
	if c.cache.GetJSON(ctx, key, &page) {
		return &page, nil
	}

	val, err, _ := c.sf.Do(key, func() (interface{}, error) {
		variables := map[string]interface{}{
			"page":    params.Page,
			"perPage": params.PerPage,
		}
		if params.Search != "" {
			variables["search"] = params.Search
		}
		if params.Season != "" {
			variables["season"] = params.Season
		}
		if params.SeasonYear != 0 {
			variables["seasonYear"] = params.SeasonYear
		}
		if params.Genre != "" {
			variables["genre"] = params.Genre
		}
		if params.Status != "" {
			variables["status"] = params.Status
		}

		var resp struct {
			Page SearchPage `json:"Page"`
		}
		if err := c.do(ctx, searchQuery, variables, &resp); err != nil {
			return nil, err
		}

		c.cache.SetJSON(ctx, key, &resp.Page, cache.TTLSearch)
		return &resp.Page, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*SearchPage), nil
}

// GetAnimeByID 获取单部动画详情（含流媒体单集和下一集放送指针）
func (c *AniListClient) GetAnimeByID(ctx context.Context, id int) (*AniListMedia, error) {
	key := cache.KeyAnime(id)

	var media AniListMedia
	if c.cache.GetJSON(ctx, key, &media) {
		return &media, nil
	}

	val, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var resp struct {
			Media AniListMedia `json:"Media"`
		}
		if err := c.do(ctx, animeByIDQuery, map[string]interface{}{"id": id}, &resp); err != nil {
			return nil, err
		}

		c.cache.SetJSON(ctx, key, &resp.Media, cache.TTLAnimeDetail)
		return &resp.Media, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*AniListMedia), nil
}

// GetAiringSchedule 获取放送日程
func (c *AniListClient) GetAiringSchedule(ctx context.Context, page, perPage int, notYetAired bool) (*AiringPage, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	key := cache.KeyAiring(page, perPage, notYetAired)

	var airing AiringPage
	if c.cache.GetJSON(ctx, key, &airing) {
		return &airing, nil
	}

	val, err, _ := c.sf.Do(key, func() (interface{}, error) {
		variables := map[string]interface{}{
			"page":        page,
			"perPage":     perPage,
			"notYetAired": notYetAired,
		}
		var resp struct {
			Page AiringPage `json:"Page"`
		}
		if err := c.do(ctx, airingQuery, variables, &resp); err != nil {
			return nil, err
		}

		c.cache.SetJSON(ctx, key, &resp.Page, cache.TTLAiringSchedule)
		return &resp.Page, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*AiringPage), nil
}

// GetTrending 获取当前热门动画
func (c *AniListClient) GetTrending(ctx context.Context, page, perPage int) (*SearchPage, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	key := cache.KeyTrending(page, perPage)

	var trending SearchPage
	if c.cache.GetJSON(ctx, key, &trending) {
		return &trending, nil
	}

	val, err, _ := c.sf.Do(key, func() (interface{}, error) {
		variables := map[string]interface{}{
			"page":    page,
			"perPage": perPage,
		}
		var resp struct {
			Page SearchPage `json:"Page"`
		}
		if err := c.do(ctx, trendingQuery, variables, &resp); err != nil {
			return nil, err
		}

		c.cache.SetJSON(ctx, key, &resp.Page, cache.TTLTrending)
		return &resp.Page, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*SearchPage), nil
}

// graphqlRequest GraphQL 请求体
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// do 发送 GraphQL 请求并把 data 解码到 dest
func (c *AniListClient) do(ctx context.Context, query string, variables map[string]interface{}, dest interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.Upstreamf("AniList 请求失败: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Upstreamf("读取 AniList 响应失败: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apperr.Upstreamf("AniList 返回状态码 %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return apperr.Upstreamf("解析 AniList 响应失败: %v", err)
	}
	if len(envelope.Errors) > 0 {
		return apperr.Upstreamf("AniList 查询出错: %s", envelope.Errors[0].Message)
	}

	return json.Unmarshal(envelope.Data, dest)
}

// truncate 截断日志里的响应体
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
