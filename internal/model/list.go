package model

import (
	"time"
)

// ListStatus 追番状态
type ListStatus string

const (
	StatusWatching    ListStatus = "WATCHING"
	StatusCompleted   ListStatus = "COMPLETED"
	StatusPlanToWatch ListStatus = "PLAN_TO_WATCH"
	StatusDropped     ListStatus = "DROPPED"
	StatusOnHold      ListStatus = "ON_HOLD"
)

// ValidListStatus 校验状态枚举值
func ValidListStatus(s string) bool {
	switch ListStatus(s) {
	case StatusWatching, StatusCompleted, StatusPlanToWatch, StatusDropped, StatusOnHold:
		return true
	}
	return false
}

// AnimeList 追番条目，(userId, animeId) 为联合主键
type AnimeList struct {
	UserID      int        `json:"userId" gorm:"primaryKey;autoIncrement:false;column:user_id"`
	AnimeID     int        `json:"animeId" gorm:"primaryKey;autoIncrement:false;column:anime_id"`
	Status      ListStatus `json:"status"`
	Score       *int       `json:"score"`
	Progress    int        `json:"progress"`
	Notes       string     `json:"notes"`
	IsFavorite  bool       `json:"isFavorite" gorm:"column:is_favorite"`
	StartedAt   *time.Time `json:"startedAt" gorm:"column:started_at"`
	CompletedAt *time.Time `json:"completedAt" gorm:"column:completed_at"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" gorm:"column:updated_at"`
	Anime       *Anime     `json:"anime,omitempty" gorm:"foreignKey:AnimeID"`
}

// TableName 指定表名
func (AnimeList) TableName() string {
	return "anime_lists"
}

// UserRating 用户评分投影（仅取 score 非空的追番条目），推荐引擎的输入
type UserRating struct {
	UserID  int `json:"userId"`
	AnimeID int `json:"animeId"`
	Rating  int `json:"rating"`
}
