package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/middleware"
	"github.com/user/anitrack/internal/model"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// ListHandler 追番列表
type ListHandler struct {
	lists *service.ListService
}

// NewListHandler 创建追番处理器
func NewListHandler(lists *service.ListService) *ListHandler {
	return &ListHandler{lists: lists}
}

// Create 添加追番条目
func (h *ListHandler) Create(c *gin.Context) {
	var in service.CreateListInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	entry, err := h.lists.Create(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Created(c, entry)
}

// List 当前用户的追番列表，?status= 过滤
func (h *ListHandler) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !model.ValidListStatus(status) {
		utils.BadRequest(c, "无效的状态: "+status)
		return
	}

	entries, err := h.lists.ListByUser(middleware.GetUserID(c), model.ListStatus(status))
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, entries)
}

// Get 单个追番条目
func (h *ListHandler) Get(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	entry, err := h.lists.Get(middleware.GetUserID(c), animeID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, entry)
}

// Update 更新追番条目
func (h *ListHandler) Update(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	var in service.UpdateListInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	entry, err := h.lists.Update(middleware.GetUserID(c), animeID, in)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, entry)
}

type progressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

// SetProgress 设置观看进度
func (h *ListHandler) SetProgress(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	entry, err := h.lists.SetProgress(middleware.GetUserID(c), animeID, *req.Progress)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, entry)
}

// IncrementProgress 进度 +1
func (h *ListHandler) IncrementProgress(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	entry, err := h.lists.IncrementProgress(middleware.GetUserID(c), animeID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, entry)
}

// Delete 删除追番条目
func (h *ListHandler) Delete(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	if err := h.lists.Delete(middleware.GetUserID(c), animeID); err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, gin.H{"animeId": animeID})
}
