package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ActivityType 动态类型
type ActivityType string

const (
	ActivityListUpdate     ActivityType = "LIST_UPDATE"
	ActivityAnimeCompleted ActivityType = "ANIME_COMPLETED"
	ActivityReviewPosted   ActivityType = "REVIEW_POSTED"
	ActivityClubJoined     ActivityType = "CLUB_JOINED"
	ActivityClubPost       ActivityType = "CLUB_POST"
)

// JSONMap 以 jsonb 存储的自由键值载荷
type JSONMap map[string]interface{}

// Value 实现 driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// Scan 实现 sql.Scanner
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("无法扫描 metadata 类型 %T", src)
}

// Activity 用户动态，只追加不修改
type Activity struct {
	ID        int          `json:"id" gorm:"primaryKey"`
	UserID    int          `json:"userId" gorm:"column:user_id;index"`
	Type      ActivityType `json:"type"`
	Metadata  JSONMap      `json:"metadata" gorm:"type:jsonb"`
	CreatedAt time.Time    `json:"createdAt" gorm:"column:created_at;index"`
	User      *User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName 指定表名
func (Activity) TableName() string {
	return "activities"
}
