package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/middleware"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// RecommendationHandler 个性化推荐
type RecommendationHandler struct {
	recommendations *service.RecommendationService
}

// NewRecommendationHandler 创建推荐处理器
func NewRecommendationHandler(recommendations *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// Get 当前用户的推荐列表
func (h *RecommendationHandler) Get(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	recs, err := h.recommendations.GetRecommendations(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, recs)
}
