package repository

import (
	"errors"
	"time"

	"github.com/user/anitrack/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// FindByUserAndAnime 查找用户对某动画的影评
func (r *ReviewRepository) FindByUserAndAnime(userID, animeID int) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("user_id = ? AND anime_id = ?", userID, animeID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByID 根据 ID 查找影评
func (r *ReviewRepository) FindByID(id int) (*model.Review, error) {
	var review model.Review
	err := r.db.First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Create 新建影评
func (r *ReviewRepository) Create(review *model.Review) error {
	review.CreatedAt = time.Now()
	return r.db.Create(review).Error
}

// ListByAnime 某动画的影评，按有用数倒序
func (r *ReviewRepository) ListByAnime(animeID int) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Preload("User").
		Where("anime_id = ?", animeID).
		Order("helpful_count DESC").
		Find(&reviews).Error
	return reviews, err
}

// CountByUser 用户影评数（个人资料页用）
func (r *ReviewRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Review{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// UpsertVote 写入或更新投票
func (r *ReviewRepository) UpsertVote(vote *model.ReviewVote) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "review_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"helpful"}),
	}).Create(vote).Error
}

// RefreshHelpfulCount 重算并回写影评的有用票数
func (r *ReviewRepository) RefreshHelpfulCount(reviewID int) (int, error) {
	var count int64
	if err := r.db.Model(&model.ReviewVote{}).
		Where("review_id = ? AND helpful = true", reviewID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	err := r.db.Model(&model.Review{}).
		Where("id = ?", reviewID).
		Update("helpful_count", count).Error
	return int(count), err
}
