package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// ActivityHandler 动态流
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler 创建动态处理器
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// Feed 全站动态流
func (h *ActivityHandler) Feed(c *gin.Context) {
	page, perPage := feedPageParams(c)
	feed, err := h.activities.Feed(page, perPage)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, feed)
}

// ByUser 某个用户的动态
func (h *ActivityHandler) ByUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		utils.BadRequest(c, "无效的用户 ID")
		return
	}

	page, perPage := feedPageParams(c)
	feed, err := h.activities.ByUser(userID, page, perPage)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, feed)
}

func feedPageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))
	return page, perPage
}
