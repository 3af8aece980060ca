package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// EpisodeHandler 集数查询
type EpisodeHandler struct {
	episodes *service.EpisodeService
}

// NewEpisodeHandler 创建集数处理器
func NewEpisodeHandler(episodes *service.EpisodeService) *EpisodeHandler {
	return &EpisodeHandler{episodes: episodes}
}

// List 某部动画的全部集数，带填充分类
func (h *EpisodeHandler) List(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	episodes, err := h.episodes.ListByAnime(animeID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, episodes)
}

// Get 单集详情
func (h *EpisodeHandler) Get(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		utils.BadRequest(c, "无效的集数")
		return
	}

	episode, err := h.episodes.GetByNumber(animeID, number)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, episode)
}

// NextAiring 下一集放送信息
func (h *EpisodeHandler) NextAiring(c *gin.Context) {
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}
	next, err := h.episodes.NextAiring(animeID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, next)
}

func animeIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "无效的动画 ID")
		return 0, false
	}
	return id, true
}
