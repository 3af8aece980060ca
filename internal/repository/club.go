package repository

import (
	"errors"
	"time"

	"github.com/user/anitrack/internal/model"
	"gorm.io/gorm"
)

type ClubRepository struct {
	db *gorm.DB
}

func NewClubRepository(db *gorm.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// Create 新建俱乐部
func (r *ClubRepository) Create(club *model.Club) error {
	club.CreatedAt = time.Now()
	return r.db.Create(club).Error
}

// FindByID 俱乐部详情（成员 + 最新 20 条帖子）
func (r *ClubRepository) FindByID(id int) (*model.Club, error) {
	var club model.Club
	err := r.db.
		Preload("Members.User").
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(20)
		}).
		Preload("Posts.User").
		First(&club, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// FindBrief 只取俱乐部本体
func (r *ClubRepository) FindBrief(id int) (*model.Club, error) {
	var club model.Club
	err := r.db.First(&club, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// ListPublic 公开俱乐部列表，带成员数和帖子数
func (r *ClubRepository) ListPublic() ([]model.Club, error) {
	var clubs []model.Club
	err := r.db.Model(&model.Club{}).
		Select(`clubs.*,
			(SELECT COUNT(*) FROM club_members WHERE club_members.club_id = clubs.id) AS member_count,
			(SELECT COUNT(*) FROM club_posts WHERE club_posts.club_id = clubs.id) AS post_count`).
		Where("is_public = true").
		Order("created_at DESC").
		Find(&clubs).Error
	return clubs, err
}

// FindMember 查找成员资格
func (r *ClubRepository) FindMember(clubID, userID int) (*model.ClubMember, error) {
	var member model.ClubMember
	err := r.db.Where("club_id = ? AND user_id = ?", clubID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember 添加成员
func (r *ClubRepository) AddMember(clubID, userID int, role string) error {
	member := &model.ClubMember{
		ClubID:   clubID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	return r.db.Create(member).Error
}

// CountMemberships 用户加入的俱乐部数（个人资料页用）
func (r *ClubRepository) CountMemberships(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.ClubMember{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// CreatePost 发帖
func (r *ClubRepository) CreatePost(post *model.ClubPost) error {
	post.CreatedAt = time.Now()
	if err := r.db.Create(post).Error; err != nil {
		return err
	}
	// 返回给前端时带上作者信息
	return r.db.Preload("User").First(post, post.ID).Error
}
