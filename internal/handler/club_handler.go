package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/middleware"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// ClubHandler 俱乐部
type ClubHandler struct {
	clubs *service.ClubService
}

// NewClubHandler 创建俱乐部处理器
func NewClubHandler(clubs *service.ClubService) *ClubHandler {
	return &ClubHandler{clubs: clubs}
}

// Create 建俱乐部
func (h *ClubHandler) Create(c *gin.Context) {
	var in service.CreateClubInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	club, err := h.clubs.Create(middleware.GetUserID(c), in)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Created(c, club)
}

// List 公开俱乐部列表
func (h *ClubHandler) List(c *gin.Context) {
	clubs, err := h.clubs.ListPublic()
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, clubs)
}

// Get 俱乐部详情
func (h *ClubHandler) Get(c *gin.Context) {
	clubID, ok := clubIDParam(c)
	if !ok {
		return
	}
	club, err := h.clubs.Get(clubID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, club)
}

// Join 加入俱乐部
func (h *ClubHandler) Join(c *gin.Context) {
	clubID, ok := clubIDParam(c)
	if !ok {
		return
	}
	if err := h.clubs.Join(clubID, middleware.GetUserID(c)); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, gin.H{"clubId": clubID})
}

type postRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// CreatePost 发帖
func (h *ClubHandler) CreatePost(c *gin.Context) {
	clubID, ok := clubIDParam(c)
	if !ok {
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	post, err := h.clubs.CreatePost(clubID, middleware.GetUserID(c), req.Content)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Created(c, post)
}

func clubIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "无效的俱乐部 ID")
		return 0, false
	}
	return id, true
}
