package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/utils"
)

// FillerEpisode 从 animefillerlist.com 抓取的单集分类
type FillerEpisode struct {
	EpisodeNumber int  `json:"episodeNumber"`
	IsFiller      bool `json:"isFiller"`
	IsManga       bool `json:"isManga"`
}

var (
	leadingNumberPattern = regexp.MustCompile(`^(\d+)`)
	slugStripPattern     = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpacePattern     = regexp.MustCompile(`\s+`)
	slugDashPattern      = regexp.MustCompile(`-+`)
)

// FillerListClient 填充集数据抓取客户端（尽力而为：抓不到就返回空结果）
type FillerListClient struct {
	baseURL string
	cache   cache.Store
	client  *utils.HTTPClient
	// 进程内备忘，避免同一 slug 在缓存过期边缘被反复解析
	memo *utils.TTLCache[[]FillerEpisode]
}

// NewFillerListClient 创建抓取客户端
func NewFillerListClient(baseURL string, store cache.Store) *FillerListClient {
	return &FillerListClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   store,
		client:  utils.NewHTTPClient(),
		memo:    utils.NewTTLCache[[]FillerEpisode](256, cache.TTLFillerList),
	}
}

// GetFillerEpisodes 抓取指定 slug 的填充集列表
// slug 形如 "naruto"、"one-piece"；没有对应页面时返回空切片而不是错误
func (c *FillerListClient) GetFillerEpisodes(ctx context.Context, animeSlug string) []FillerEpisode {
	slug := strings.ToLower(animeSlug)

	if episodes, ok := c.memo.Get(slug); ok {
		return episodes
	}

	key := cache.KeyFillerList(slug)
	var episodes []FillerEpisode
	if c.cache.GetJSON(ctx, key, &episodes) {
		c.memo.Set(slug, episodes)
		return episodes
	}

	url := fmt.Sprintf("%s/shows/%s", c.baseURL, slug)
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		log.Printf("[FillerList] 抓取失败 (slug=%s): %v", slug, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[FillerList] 没有 %s 的填充集数据（状态码 %d）", slug, resp.StatusCode)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Printf("[FillerList] 解析 HTML 失败 (slug=%s): %v", slug, err)
		return nil
	}

	episodes = parseFillerTable(doc)

	c.cache.SetJSON(ctx, key, episodes, cache.TTLFillerList)
	c.memo.Set(slug, episodes)
	return episodes
}

// parseFillerTable 解析单集表格，按类型单元格的 class 判定 filler/manga
func parseFillerTable(doc *goquery.Document) []FillerEpisode {
	var episodes []FillerEpisode

	doc.Find(".Episodes tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		episodeText := strings.TrimSpace(cells.First().Text())
		m := leadingNumberPattern.FindStringSubmatch(episodeText)
		if m == nil {
			return
		}
		number, _ := strconv.Atoi(m[1])

		typeClass, _ := cells.Eq(1).Attr("class")
		typeClass = strings.ToLower(typeClass)

		episodes = append(episodes, FillerEpisode{
			EpisodeNumber: number,
			IsFiller:      strings.Contains(typeClass, "filler"),
			IsManga:       strings.Contains(typeClass, "manga"),
		})
	})

	return episodes
}

// IsFillerEpisode 查询某一集是否填充集
func (c *FillerListClient) IsFillerEpisode(ctx context.Context, animeSlug string, episodeNumber int) bool {
	for _, ep := range c.GetFillerEpisodes(ctx, animeSlug) {
		if ep.EpisodeNumber == episodeNumber {
			return ep.IsFiller
		}
	}
	return false
}

// SuggestSlug 把动画标题转成 animefillerlist.com 的 URL slug
func SuggestSlug(animeTitle string) string {
	slug := strings.ToLower(animeTitle)
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugSpacePattern.ReplaceAllString(slug, "-")
	slug = slugDashPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
