package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// AnimeHandler 动画搜索和详情
type AnimeHandler struct {
	catalog *service.AniListClient
	anime   *service.AnimeService
}

// NewAnimeHandler 创建动画处理器
func NewAnimeHandler(catalog *service.AniListClient, anime *service.AnimeService) *AnimeHandler {
	return &AnimeHandler{catalog: catalog, anime: anime}
}

// Search 搜索动画
func (h *AnimeHandler) Search(c *gin.Context) {
	var params service.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	page, err := h.catalog.SearchAnime(c.Request.Context(), params)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, page)
}

// Trending 热门动画
func (h *AnimeHandler) Trending(c *gin.Context) {
	page, perPage := pageParams(c, 20)
	result, err := h.catalog.GetTrending(c.Request.Context(), page, perPage)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

// Airing 放送日历
func (h *AnimeHandler) Airing(c *gin.Context) {
	page, perPage := pageParams(c, 50)
	notYetAired := c.DefaultQuery("notYetAired", "true") == "true"

	result, err := h.catalog.GetAiringSchedule(c.Request.Context(), page, perPage, notYetAired)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

// Detail 动画详情，优先走本地镜像
func (h *AnimeHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "无效的动画 ID")
		return
	}

	anime, source, err := h.anime.GetAnime(c.Request.Context(), id)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	c.Header("X-Data-Source", string(source))
	utils.Success(c, anime.ForAPI())
}

// pageParams 解析分页参数
func pageParams(c *gin.Context, defaultPerPage int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(defaultPerPage)))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = defaultPerPage
	}
	return page, perPage
}
