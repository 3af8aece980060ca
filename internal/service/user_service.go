package service

import (
	"sync"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/model"
)

type userStore interface {
	FindByID(id int) (*model.User, error)
}

type listStatsStore interface {
	CountByStatus(userID int, status model.ListStatus) (int, error)
	SumProgress(userID int) (int, error)
	CountByUser(userID int) (int, error)
}

type reviewCountStore interface {
	CountByUser(userID int) (int, error)
}

type clubCountStore interface {
	CountMemberships(userID int) (int, error)
}

// UserService 用户主页和统计
type UserService struct {
	users   userStore
	lists   listStatsStore
	reviews reviewCountStore
	clubs   clubCountStore
}

// NewUserService 创建用户服务
func NewUserService(users userStore, lists listStatsStore, reviews reviewCountStore, clubs clubCountStore) *UserService {
	return &UserService{users: users, lists: lists, reviews: reviews, clubs: clubs}
}

// UserProfile 用户主页数据
type UserProfile struct {
	User        *model.User `json:"user"`
	ListEntries int         `json:"listEntries"`
	Reviews     int         `json:"reviews"`
	Clubs       int         `json:"clubs"`
}

// GetProfile 用户主页
func (s *UserService) GetProfile(userID int) (*UserProfile, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("用户 %d 不存在", userID)
	}

	listCount, err := s.lists.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	reviewCount, err := s.reviews.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	clubCount, err := s.clubs.CountMemberships(userID)
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		User:        user,
		ListEntries: listCount,
		Reviews:     reviewCount,
		Clubs:       clubCount,
	}, nil
}

// GetStats 用户追番统计，五个聚合并发查
func (s *UserService) GetStats(userID int) (*model.UserStats, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("用户 %d 不存在", userID)
	}

	stats := &model.UserStats{}
	errs := make([]error, 5)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		stats.Watching, errs[0] = s.lists.CountByStatus(userID, model.StatusWatching)
	}()
	go func() {
		defer wg.Done()
		stats.Completed, errs[1] = s.lists.CountByStatus(userID, model.StatusCompleted)
	}()
	go func() {
		defer wg.Done()
		stats.PlanToWatch, errs[2] = s.lists.CountByStatus(userID, model.StatusPlanToWatch)
	}()
	go func() {
		defer wg.Done()
		stats.Dropped, errs[3] = s.lists.CountByStatus(userID, model.StatusDropped)
	}()
	go func() {
		defer wg.Done()
		stats.TotalEpisodesWatched, errs[4] = s.lists.SumProgress(userID)
	}()
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return stats, nil
}
