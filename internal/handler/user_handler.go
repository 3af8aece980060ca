package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/middleware"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// UserHandler 用户主页和统计
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile 用户主页
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	profile, err := h.users.GetProfile(userID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, profile)
}

// Stats 用户追番统计
func (h *UserHandler) Stats(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	stats, err := h.users.GetStats(userID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, stats)
}

// MyStats 当前登录用户的追番统计
func (h *UserHandler) MyStats(c *gin.Context) {
	stats, err := h.users.GetStats(middleware.GetUserID(c))
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, stats)
}

func userIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "无效的用户 ID")
		return 0, false
	}
	return id, true
}
