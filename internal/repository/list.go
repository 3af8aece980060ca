package repository

import (
	"errors"

	"github.com/user/anitrack/internal/model"
	"gorm.io/gorm"
)

type ListRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

// Find 根据 (userId, animeId) 查找追番条目（带动画信息）
func (r *ListRepository) Find(userID, animeID int) (*model.AnimeList, error) {
	var entry model.AnimeList
	err := r.db.Preload("Anime").
		Where("user_id = ? AND anime_id = ?", userID, animeID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create 新建追番条目
func (r *ListRepository) Create(entry *model.AnimeList) error {
	return r.db.Omit("Anime").Create(entry).Error
}

// Save 保存整条记录
func (r *ListRepository) Save(entry *model.AnimeList) error {
	return r.db.Omit("Anime").Save(entry).Error
}

// Delete 删除追番条目
func (r *ListRepository) Delete(userID, animeID int) error {
	return r.db.Where("user_id = ? AND anime_id = ?", userID, animeID).Delete(&model.AnimeList{}).Error
}

// ListByUser 获取用户的追番列表，status 为空时取全部，按更新时间倒序
func (r *ListRepository) ListByUser(userID int, status model.ListStatus) ([]model.AnimeList, error) {
	var entries []model.AnimeList
	q := r.db.Preload("Anime").Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("updated_at DESC").Find(&entries).Error
	return entries, err
}

// CountByStatus 统计用户某状态的条目数
func (r *ListRepository) CountByStatus(userID int, status model.ListStatus) (int, error) {
	var count int64
	err := r.db.Model(&model.AnimeList{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return int(count), err
}

// SumProgress 用户累计观看集数
func (r *ListRepository) SumProgress(userID int) (int, error) {
	var total int64
	err := r.db.Model(&model.AnimeList{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(progress), 0)").
		Scan(&total).Error
	return int(total), err
}

// CountByUser 用户追番总数（个人资料页用）
func (r *ListRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.AnimeList{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// RatingsByUser 用户评分投影（score 非空的条目）
func (r *ListRepository) RatingsByUser(userID int) ([]model.UserRating, error) {
	var ratings []model.UserRating
	err := r.db.Model(&model.AnimeList{}).
		Select("user_id, anime_id, score AS rating").
		Where("user_id = ? AND score IS NOT NULL", userID).
		Scan(&ratings).Error
	return ratings, err
}

// RatingsForAnime 其他用户对指定动画集合的评分（邻居候选池）
func (r *ListRepository) RatingsForAnime(animeIDs []int, excludeUserID int) ([]model.UserRating, error) {
	var ratings []model.UserRating
	err := r.db.Model(&model.AnimeList{}).
		Select("user_id, anime_id, score AS rating").
		Where("anime_id IN ? AND user_id <> ? AND score IS NOT NULL", animeIDs, excludeUserID).
		Scan(&ratings).Error
	return ratings, err
}

// HighRatedByUsers 指定用户集合打出的高分条目（带动画信息），推荐候选
func (r *ListRepository) HighRatedByUsers(userIDs []int, excludeAnimeIDs []int, minScore int) ([]model.AnimeList, error) {
	var entries []model.AnimeList
	q := r.db.Preload("Anime").
		Where("user_id IN ? AND score >= ?", userIDs, minScore)
	if len(excludeAnimeIDs) > 0 {
		q = q.Where("anime_id NOT IN ?", excludeAnimeIDs)
	}
	err := q.Find(&entries).Error
	return entries, err
}
