package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/cache"
	"github.com/user/anitrack/internal/repository"
	"github.com/user/anitrack/internal/service"
	"github.com/user/anitrack/internal/utils"
)

// AdminHandler 管理接口：手动触发同步、刷缓存
type AdminHandler struct {
	episodes *service.EpisodeService
	anime    *repository.AnimeRepository
	cache    cache.Store
}

// NewAdminHandler 创建管理处理器
func NewAdminHandler(episodes *service.EpisodeService, anime *repository.AnimeRepository, store cache.Store) *AdminHandler {
	return &AdminHandler{episodes: episodes, anime: anime, cache: store}
}

type syncFillerRequest struct {
	AnimeID int    `json:"animeId" binding:"required"`
	Slug    string `json:"slug"`
}

// SyncFiller 手动同步某部动画的填充标记
// 不传 slug 就按罗马字标题猜一个
func (h *AdminHandler) SyncFiller(c *gin.Context) {
	var req syncFillerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	slug := req.Slug
	if slug == "" {
		anime, err := h.anime.FindByID(req.AnimeID)
		if err != nil {
			utils.FromError(c, err)
			return
		}
		if anime == nil {
			utils.Error(c, 404, "动画不在本地库里，请先访问详情接口")
			return
		}
		slug = service.SuggestSlug(anime.TitleRomaji)
	}

	result, err := h.episodes.SyncFillerData(c.Request.Context(), req.AnimeID, slug)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

type syncEpisodesRequest struct {
	AnimeID int `json:"animeId" binding:"required"`
}

// SyncEpisodes 手动从上游同步某部动画的集数
func (h *AdminHandler) SyncEpisodes(c *gin.Context) {
	var req syncEpisodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.episodes.SyncFromCatalog(c.Request.Context(), req.AnimeID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, result)
}

type invalidateRequest struct {
	Pattern string `json:"pattern" binding:"required"`
}

// InvalidateCache 按模式清缓存，例如 anilist:*
func (h *AdminHandler) InvalidateCache(c *gin.Context) {
	var req invalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	h.cache.InvalidatePattern(c.Request.Context(), req.Pattern)
	utils.Success(c, gin.H{"pattern": req.Pattern})
}
