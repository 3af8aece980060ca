package service

import (
	"github.com/user/anitrack/internal/model"
)

type activityFeedStore interface {
	Feed(page, perPage int) ([]model.Activity, error)
	ByUser(userID, page, perPage int) ([]model.Activity, error)
}

// ActivityService 动态流，只读
// 动态由追番/影评/俱乐部服务在写操作里追加，这里只负责分页查询
type ActivityService struct {
	activities activityFeedStore
}

// NewActivityService 创建动态服务
func NewActivityService(activities activityFeedStore) *ActivityService {
	return &ActivityService{activities: activities}
}

const (
	defaultFeedPerPage = 20
	maxFeedPerPage     = 50
)

// Feed 全站动态流
func (s *ActivityService) Feed(page, perPage int) ([]model.Activity, error) {
	page, perPage = normalizePage(page, perPage)
	return s.activities.Feed(page, perPage)
}

// ByUser 某个用户的动态
func (s *ActivityService) ByUser(userID, page, perPage int) ([]model.Activity, error) {
	page, perPage = normalizePage(page, perPage)
	return s.activities.ByUser(userID, page, perPage)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultFeedPerPage
	}
	if perPage > maxFeedPerPage {
		perPage = maxFeedPerPage
	}
	return page, perPage
}
