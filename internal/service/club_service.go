package service

import (
	"time"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/model"
)

type clubStore interface {
	Create(club *model.Club) error
	FindByID(id int) (*model.Club, error)
	FindBrief(id int) (*model.Club, error)
	ListPublic() ([]model.Club, error)
	FindMember(clubID, userID int) (*model.ClubMember, error)
	AddMember(clubID, userID int, role string) error
	CreatePost(post *model.ClubPost) error
}

// ClubService 俱乐部
type ClubService struct {
	clubs      clubStore
	activities activityStore
}

// NewClubService 创建俱乐部服务
func NewClubService(clubs clubStore, activities activityStore) *ClubService {
	return &ClubService{clubs: clubs, activities: activities}
}

// CreateClubInput 建俱乐部的请求
type CreateClubInput struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
	IsPublic    *bool  `json:"isPublic"`
}

// Create 建俱乐部，创建者自动成为 OWNER
func (s *ClubService) Create(userID int, in CreateClubInput) (*model.Club, error) {
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	club := &model.Club{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		IsPublic:    isPublic,
		CreatedAt:   time.Now(),
	}
	if err := s.clubs.Create(club); err != nil {
		return nil, err
	}
	if err := s.clubs.AddMember(club.ID, userID, model.ClubRoleOwner); err != nil {
		return nil, err
	}
	return club, nil
}

// Get 俱乐部详情，含成员和最近的帖子
func (s *ClubService) Get(id int) (*model.Club, error) {
	club, err := s.clubs.FindByID(id)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, apperr.NotFoundf("俱乐部 %d 不存在", id)
	}
	return club, nil
}

// ListPublic 公开俱乐部列表
func (s *ClubService) ListPublic() ([]model.Club, error) {
	return s.clubs.ListPublic()
}

// Join 加入俱乐部
func (s *ClubService) Join(clubID, userID int) error {
	club, err := s.clubs.FindBrief(clubID)
	if err != nil {
		return err
	}
	if club == nil {
		return apperr.NotFoundf("俱乐部 %d 不存在", clubID)
	}

	member, err := s.clubs.FindMember(clubID, userID)
	if err != nil {
		return err
	}
	if member != nil {
		return apperr.Conflictf("已经是俱乐部 %d 的成员", clubID)
	}

	if err := s.clubs.AddMember(clubID, userID, model.ClubRoleMember); err != nil {
		return err
	}
	return s.activities.Record(userID, model.ActivityClubJoined, model.JSONMap{
		"clubId":   clubID,
		"clubName": club.Name,
	})
}

// CreatePost 发帖，只有成员能发
func (s *ClubService) CreatePost(clubID, userID int, content string) (*model.ClubPost, error) {
	club, err := s.clubs.FindBrief(clubID)
	if err != nil {
		return nil, err
	}
	if club == nil {
		return nil, apperr.NotFoundf("俱乐部 %d 不存在", clubID)
	}

	member, err := s.clubs.FindMember(clubID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperr.Forbiddenf("只有成员才能在俱乐部 %d 里发帖", clubID)
	}

	post := &model.ClubPost{
		ClubID:    clubID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.clubs.CreatePost(post); err != nil {
		return nil, err
	}

	if err := s.activities.Record(userID, model.ActivityClubPost, model.JSONMap{
		"clubId":   clubID,
		"clubName": club.Name,
	}); err != nil {
		return nil, err
	}
	return post, nil
}
