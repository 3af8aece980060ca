package repository

import (
	"errors"

	"github.com/user/anitrack/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EpisodeRepository struct {
	db *gorm.DB
}

func NewEpisodeRepository(db *gorm.DB) *EpisodeRepository {
	return &EpisodeRepository{db: db}
}

// ListByAnime 按集数升序取某部动画的全部单集
func (r *EpisodeRepository) ListByAnime(animeID int) ([]model.Episode, error) {
	var episodes []model.Episode
	err := r.db.Where("anime_id = ?", animeID).Order("number ASC").Find(&episodes).Error
	return episodes, err
}

// FindByNumber 根据 (animeId, number) 查找单集
func (r *EpisodeRepository) FindByNumber(animeID, number int) (*model.Episode, error) {
	var episode model.Episode
	err := r.db.Where("anime_id = ? AND number = ?", animeID, number).First(&episode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &episode, nil
}

// CountByAnime 统计某部动画已有的单集数
func (r *EpisodeRepository) CountByAnime(animeID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Episode{}).Where("anime_id = ?", animeID).Count(&count).Error
	return int(count), err
}

// UpsertStreaming 写入流媒体信息（标题/缩略图/播放链接），不碰填充标记
func (r *EpisodeRepository) UpsertStreaming(ep *model.Episode) error {
	return r.db.Exec(`
		INSERT INTO episodes (anime_id, number, title, thumbnail, streaming_url, is_filler, is_manga)
		VALUES ($1, $2, $3, $4, $5, false, false)
		ON CONFLICT (anime_id, number) DO UPDATE SET
			title = EXCLUDED.title,
			thumbnail = EXCLUDED.thumbnail,
			streaming_url = EXCLUDED.streaming_url
	`, ep.AnimeID, ep.Number, ep.Title, ep.Thumbnail, ep.StreamingURL).Error
}

// UpsertFlags 写入填充/漫画标记，不碰流媒体信息
func (r *EpisodeRepository) UpsertFlags(animeID, number int, isFiller, isManga bool) error {
	return r.db.Exec(`
		INSERT INTO episodes (anime_id, number, title, thumbnail, streaming_url, is_filler, is_manga)
		VALUES ($1, $2, '', '', '', $3, $4)
		ON CONFLICT (anime_id, number) DO UPDATE SET
			is_filler = EXCLUDED.is_filler,
			is_manga = EXCLUDED.is_manga
	`, animeID, number, isFiller, isManga).Error
}

// CreatePlaceholders 按总集数批量补占位单集（已存在的不覆盖）
func (r *EpisodeRepository) CreatePlaceholders(episodes []model.Episode) error {
	if len(episodes) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&episodes).Error
}
