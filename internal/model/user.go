package model

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	Image        string    `json:"image"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
}

// UserBrief 嵌入动态/影评/帖子里的用户摘要
type UserBrief struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

// Brief 返回用户摘要
func (u *User) Brief() UserBrief {
	return UserBrief{ID: u.ID, Username: u.Username, Image: u.Image}
}

// UserStats 用户追番统计
type UserStats struct {
	Watching             int `json:"watching"`
	Completed            int `json:"completed"`
	PlanToWatch          int `json:"planToWatch"`
	Dropped              int `json:"dropped"`
	TotalEpisodesWatched int `json:"totalEpisodesWatched"`
}
