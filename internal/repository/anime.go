package repository

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/user/anitrack/internal/model"
	"gorm.io/gorm"
)

type AnimeRepository struct {
	db *gorm.DB
}

func NewAnimeRepository(db *gorm.DB) *AnimeRepository {
	return &AnimeRepository{db: db}
}

// FindByID 根据 AniList ID 查找动画（带单集列表，按集数升序）
func (r *AnimeRepository) FindByID(id int) (*model.Anime, error) {
	var anime model.Anime
	err := r.db.Preload("EpisodeList", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	}).First(&anime, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &anime, nil
}

// Upsert 创建或更新镜像行，cached_at 以当前时间刷新
func (r *AnimeRepository) Upsert(anime *model.Anime) error {
	anime.CachedAt = time.Now()
	return r.db.Exec(`
		INSERT INTO anime (id, title_romaji, title_english, title_native, description,
		                   cover_image, banner_image, genres, tags, average_score, popularity,
		                   episode_count, status, season, season_year, format,
		                   start_date, end_date, studios, external_links, next_airing, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (id) DO UPDATE SET
			title_romaji = EXCLUDED.title_romaji,
			title_english = EXCLUDED.title_english,
			title_native = EXCLUDED.title_native,
			description = EXCLUDED.description,
			cover_image = EXCLUDED.cover_image,
			banner_image = EXCLUDED.banner_image,
			genres = EXCLUDED.genres,
			tags = EXCLUDED.tags,
			average_score = EXCLUDED.average_score,
			popularity = EXCLUDED.popularity,
			episode_count = EXCLUDED.episode_count,
			status = EXCLUDED.status,
			season = EXCLUDED.season,
			season_year = EXCLUDED.season_year,
			format = EXCLUDED.format,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			studios = EXCLUDED.studios,
			external_links = EXCLUDED.external_links,
			next_airing = EXCLUDED.next_airing,
			cached_at = EXCLUDED.cached_at
	`, anime.ID, anime.TitleRomaji, anime.TitleEnglish, anime.TitleNative, anime.Description,
		anime.CoverImage, anime.BannerImage, pq.Array([]string(anime.Genres)), pq.Array([]string(anime.Tags)),
		anime.AverageScore, anime.Popularity, anime.EpisodeCount, anime.Status, anime.Season,
		anime.SeasonYear, anime.Format, anime.StartDate, anime.EndDate,
		pq.Array([]string(anime.Studios)), anime.ExternalLinks, anime.NextAiring, anime.CachedAt).Error
}

// UpdateNextAiring 只更新下一集放送指针
func (r *AnimeRepository) UpdateNextAiring(id int, next *model.AiringPointer) error {
	return r.db.Model(&model.Anime{}).Where("id = ?", id).Update("next_airing", next).Error
}

// TopByPopularity 按全站热度降序取前 N 条
func (r *AnimeRepository) TopByPopularity(limit int) ([]model.Anime, error) {
	var list []model.Anime
	err := r.db.Order("popularity DESC").Limit(limit).Find(&list).Error
	return list, err
}

// ListByIDs 按 ID 集合查找
func (r *AnimeRepository) ListByIDs(ids []int) ([]model.Anime, error) {
	var list []model.Anime
	err := r.db.Where("id IN ?", ids).Find(&list).Error
	return list, err
}

// ListReleasing 正在放送中的动画（定时同步任务用）
func (r *AnimeRepository) ListReleasing() ([]model.Anime, error) {
	var list []model.Anime
	err := r.db.Where("status = ?", "RELEASING").Find(&list).Error
	return list, err
}
