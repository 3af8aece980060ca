package model

import (
	"time"
)

// Review 影评，每个用户对同一动画只能发一条
type Review struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	UserID       int       `json:"userId" gorm:"column:user_id;uniqueIndex:uniq_user_anime_review"`
	AnimeID      int       `json:"animeId" gorm:"column:anime_id;uniqueIndex:uniq_user_anime_review"`
	Rating       int       `json:"rating"`
	Content      string    `json:"content"`
	HelpfulCount int       `json:"helpfulCount" gorm:"column:helpful_count"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
	User         *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ReviewVote 影评有用投票，(userId, reviewId) 唯一
type ReviewVote struct {
	UserID   int  `json:"userId" gorm:"primaryKey;autoIncrement:false;column:user_id"`
	ReviewID int  `json:"reviewId" gorm:"primaryKey;autoIncrement:false;column:review_id"`
	Helpful  bool `json:"helpful"`
}
