package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/middleware"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// ReviewHandler 影评
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler 创建影评处理器
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Create 发影评
func (h *ReviewHandler) Create(c *gin.Context) {
	var in service.CreateReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Created(c, review)
}

// ListByAnime 某部动画的影评
func (h *ReviewHandler) ListByAnime(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	reviews, err := h.reviews.ListByAnime(animeID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, reviews)
}

type voteRequest struct {
	Helpful *bool `json:"helpful" binding:"required"`
}

// Vote 给影评投票
func (h *ReviewHandler) Vote(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil || reviewID <= 0 {
		utils.BadRequest(c, "无效的影评 ID")
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	helpfulCount, err := h.reviews.Vote(middleware.GetUserID(c), reviewID, *req.Helpful)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, gin.H{"helpfulCount": helpfulCount})
}
