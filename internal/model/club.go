package model

import (
	"time"
)

// 俱乐部成员角色
const (
	ClubRoleOwner  = "OWNER"
	ClubRoleMember = "MEMBER"
)

// Club 俱乐部
type Club struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl" gorm:"column:image_url"`
	IsPublic    bool      `json:"isPublic" gorm:"column:is_public"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at"`

	// 关联查询/聚合时填充
	Members     []ClubMember `json:"members,omitempty" gorm:"foreignKey:ClubID"`
	Posts       []ClubPost   `json:"posts,omitempty" gorm:"foreignKey:ClubID"`
	MemberCount int          `json:"memberCount,omitempty" gorm:"->;-:migration;column:member_count"`
	PostCount   int          `json:"postCount,omitempty" gorm:"->;-:migration;column:post_count"`
}

// ClubMember 俱乐部成员，(clubId, userId) 唯一
type ClubMember struct {
	ClubID   int       `json:"clubId" gorm:"primaryKey;autoIncrement:false;column:club_id"`
	UserID   int       `json:"userId" gorm:"primaryKey;autoIncrement:false;column:user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt" gorm:"column:joined_at"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ClubPost 俱乐部帖子
type ClubPost struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	ClubID    int       `json:"clubId" gorm:"column:club_id;index"`
	UserID    int       `json:"userId" gorm:"column:user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
