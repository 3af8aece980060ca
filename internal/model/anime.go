package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Anime 动画模型（AniList 数据的本地镜像，以 AniList ID 为主键）
type Anime struct {
	ID            int             `json:"id" gorm:"primaryKey;autoIncrement:false"`
	TitleRomaji   string          `json:"-" gorm:"column:title_romaji"`
	TitleEnglish  string          `json:"-" gorm:"column:title_english"`
	TitleNative   string          `json:"-" gorm:"column:title_native"`
	Description   string          `json:"description"`
	CoverImage    string          `json:"-" gorm:"column:cover_image"`
	BannerImage   string          `json:"bannerImage" gorm:"column:banner_image"`
	Genres        pq.StringArray  `json:"genres" gorm:"type:text[]"`
	Tags          pq.StringArray  `json:"tags" gorm:"type:text[]"`
	AverageScore  int             `json:"averageScore" gorm:"column:average_score"`
	Popularity    int             `json:"popularity" gorm:"index"`
	EpisodeCount  int             `json:"episodes" gorm:"column:episode_count"`
	Status        string          `json:"status"`
	Season        string          `json:"season"`
	SeasonYear    int             `json:"seasonYear" gorm:"column:season_year"`
	Format        string          `json:"format"`
	StartDate     *time.Time      `json:"startDate" gorm:"column:start_date"`
	EndDate       *time.Time      `json:"endDate" gorm:"column:end_date"`
	Studios       pq.StringArray  `json:"studios" gorm:"type:text[]"`
	ExternalLinks ExternalLinks   `json:"externalLinks" gorm:"column:external_links;type:jsonb"`
	NextAiring    *AiringPointer  `json:"nextAiringEpisode" gorm:"column:next_airing;type:jsonb"`
	CachedAt      time.Time       `json:"cachedAt" gorm:"column:cached_at;index"`
	EpisodeList   []Episode       `json:"episodeList,omitempty" gorm:"foreignKey:AnimeID"`
}

// TableName 指定表名
func (Anime) TableName() string {
	return "anime"
}

// Title 返回 API 形状的三语标题
func (a *Anime) Title() TitleSet {
	return TitleSet{
		Romaji:  a.TitleRomaji,
		English: a.TitleEnglish,
		Native:  a.TitleNative,
	}
}

// PreferredTitle 单行展示用的标题，按罗马字、英文、日文原文的顺序取第一个非空值
func (a *Anime) PreferredTitle() string {
	switch {
	case a.TitleRomaji != "":
		return a.TitleRomaji
	case a.TitleEnglish != "":
		return a.TitleEnglish
	case a.TitleNative != "":
		return a.TitleNative
	}
	return "Unknown"
}

// IsFresh 判断镜像数据是否在指定时长内刷新过
func (a *Anime) IsFresh(window time.Duration) bool {
	return !a.CachedAt.IsZero() && time.Since(a.CachedAt) < window
}

// TitleSet 三语标题
type TitleSet struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// CoverImageSet AniList 风格的封面图结构
type CoverImageSet struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

// ExternalLink 外部链接
type ExternalLink struct {
	URL  string `json:"url"`
	Site string `json:"site"`
}

// ExternalLinks 以 jsonb 存储的外部链接列表
type ExternalLinks []ExternalLink

// Value 实现 driver.Valuer
func (l ExternalLinks) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan 实现 sql.Scanner
func (l *ExternalLinks) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("无法扫描 external_links 类型 %T", src)
}

// AiringPointer 下一集放送指针（集数 + Unix 时间戳）
type AiringPointer struct {
	Episode         int   `json:"episode"`
	AiringAt        int64 `json:"airingAt"`
	TimeUntilAiring int64 `json:"timeUntilAiring,omitempty"`
}

// Value 实现 driver.Valuer
func (p *AiringPointer) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

// Scan 实现 sql.Scanner
func (p *AiringPointer) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	}
	return fmt.Errorf("无法扫描 next_airing 类型 %T", src)
}

// AnimeResponse 返回给前端的动画结构（标题、封面按 AniList 形状组装）
type AnimeResponse struct {
	*Anime
	Title      TitleSet      `json:"title"`
	CoverImage CoverImageSet `json:"coverImage"`
}

// ForAPI 把镜像行转换为 API 形状
func (a *Anime) ForAPI() *AnimeResponse {
	if a == nil {
		return nil
	}
	return &AnimeResponse{
		Anime: a,
		Title: a.Title(),
		CoverImage: CoverImageSet{
			Large:  a.CoverImage,
			Medium: a.CoverImage,
		},
	}
}
