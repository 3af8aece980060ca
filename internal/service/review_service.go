package service

import (
	"context"
	"time"

	"github.com/user/anitrack/internal/apperr"
	"github.com/user/anitrack/internal/model"
)

type reviewStore interface {
	FindByUserAndAnime(userID, animeID int) (*model.Review, error)
	FindByID(id int) (*model.Review, error)
	Create(review *model.Review) error
	ListByAnime(animeID int) ([]model.Review, error)
	UpsertVote(vote *model.ReviewVote) error
	RefreshHelpfulCount(reviewID int) (int, error)
}

// ReviewService 影评
type ReviewService struct {
	reviews    reviewStore
	activities activityStore
	anime      animeProvider
}

// NewReviewService 创建影评服务
func NewReviewService(reviews reviewStore, activities activityStore, anime animeProvider) *ReviewService {
	return &ReviewService{reviews: reviews, activities: activities, anime: anime}
}

// CreateReviewInput 发影评的请求
type CreateReviewInput struct {
	AnimeID int    `json:"animeId" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=10"`
	Content string `json:"content" binding:"required,min=10"`
}

// Create 发影评，每个用户对同一动画只能发一条
func (s *ReviewService) Create(ctx context.Context, userID int, in CreateReviewInput) (*model.Review, error) {
	existing, err := s.reviews.FindByUserAndAnime(userID, in.AnimeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflictf("已经评论过动画 %d", in.AnimeID)
	}

	anime, _, err := s.anime.GetAnime(ctx, in.AnimeID)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		UserID:    userID,
		AnimeID:   in.AnimeID,
		Rating:    in.Rating,
		Content:   in.Content,
		CreatedAt: time.Now(),
	}
	if err := s.reviews.Create(review); err != nil {
		return nil, err
	}

	if err := s.activities.Record(userID, model.ActivityReviewPosted, model.JSONMap{
		"animeId":    in.AnimeID,
		"animeTitle": anime.PreferredTitle(),
		"rating":     in.Rating,
	}); err != nil {
		return nil, err
	}

	return review, nil
}

// ListByAnime 某部动画的影评，按有用数倒序
func (s *ReviewService) ListByAnime(animeID int) ([]model.Review, error) {
	return s.reviews.ListByAnime(animeID)
}

// Vote 给影评投有用/没用票，重复投票覆盖之前的
// 返回刷新后的有用数
func (s *ReviewService) Vote(userID, reviewID int, helpful bool) (int, error) {
	review, err := s.reviews.FindByID(reviewID)
	if err != nil {
		return 0, err
	}
	if review == nil {
		return 0, apperr.NotFoundf("影评 %d 不存在", reviewID)
	}
	if review.UserID == userID {
		return 0, apperr.Forbiddenf("不能给自己的影评投票")
	}

	if err := s.reviews.UpsertVote(&model.ReviewVote{
		UserID:   userID,
		ReviewID: reviewID,
		Helpful:  helpful,
	}); err != nil {
		return 0, err
	}
	return s.reviews.RefreshHelpfulCount(reviewID)
}
