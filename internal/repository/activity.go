package repository

import (
	"time"

	"github.com/user/anitrack/internal/model"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record 追加一条动态
func (r *ActivityRepository) Record(userID int, typ model.ActivityType, metadata model.JSONMap) error {
	activity := &model.Activity{
		UserID:    userID,
		Type:      typ,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	return r.db.Create(activity).Error
}

// Feed 全站动态，按时间倒序分页
func (r *ActivityRepository) Feed(page, perPage int) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.Preload("User").
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&activities).Error
	return activities, err
}

// ByUser 指定用户的动态，按时间倒序分页
func (r *ActivityRepository) ByUser(userID, page, perPage int) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&activities).Error
	return activities, err
}
