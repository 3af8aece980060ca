package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/config"
	"github.com/user/anitrack/internal/handler"
	"github.com/user/anitrack/internal/middleware"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Auth           *handler.AuthHandler
	Anime          *handler.AnimeHandler
	Episode        *handler.EpisodeHandler
	List           *handler.ListHandler
	Recommendation *handler.RecommendationHandler
	Review         *handler.ReviewHandler
	Club           *handler.ClubHandler
	Activity       *handler.ActivityHandler
	User           *handler.UserHandler
	Admin          *handler.AdminHandler
}

// Setup 初始化路由
func Setup(cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// 认证
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(cfg.AppSecret), h.Auth.Me)
	}

	// 动画目录，无需登录（带了 token 也解析，便于后续个性化）
	anime := api.Group("/anime", middleware.OptionalAuth(cfg.AppSecret))
	{
		anime.GET("/search", h.Anime.Search)
		anime.GET("/trending", h.Anime.Trending)
		anime.GET("/airing", h.Anime.Airing)
		anime.GET("/:id", h.Anime.Detail)
		anime.GET("/:id/episodes", h.Episode.List)
		anime.GET("/:id/episodes/:number", h.Episode.Get)
		anime.GET("/:id/next-airing", h.Episode.NextAiring)
		anime.GET("/:id/reviews", h.Review.ListByAnime)
	}

	// 追番列表，需要登录
	list := api.Group("/list", middleware.RequireAuth(cfg.AppSecret))
	{
		list.POST("", h.List.Create)
		list.GET("", h.List.List)
		list.GET("/:id", h.List.Get)
		list.PATCH("/:id", h.List.Update)
		list.PUT("/:id/progress", h.List.SetProgress)
		list.POST("/:id/increment", h.List.IncrementProgress)
		list.DELETE("/:id", h.List.Delete)
	}

	// 推荐
	api.GET("/recommendations", middleware.RequireAuth(cfg.AppSecret), h.Recommendation.Get)

	// 影评
	reviews := api.Group("/reviews", middleware.RequireAuth(cfg.AppSecret))
	{
		reviews.POST("", h.Review.Create)
		reviews.POST("/:id/vote", h.Review.Vote)
	}

	// 俱乐部
	clubs := api.Group("/clubs")
	{
		clubs.GET("", h.Club.List)
		clubs.GET("/:id", h.Club.Get)

		authed := clubs.Group("", middleware.RequireAuth(cfg.AppSecret))
		authed.POST("", h.Club.Create)
		authed.POST("/:id/join", h.Club.Join)
		authed.POST("/:id/posts", h.Club.CreatePost)
	}

	// 动态流
	api.GET("/activities", h.Activity.Feed)

	// 用户
	users := api.Group("/users")
	{
		users.GET("/:id", h.User.Profile)
		users.GET("/:id/stats", h.User.Stats)
		users.GET("/:id/activities", h.Activity.ByUser)
	}
	api.GET("/me/stats", middleware.RequireAuth(cfg.AppSecret), h.User.MyStats)

	// 管理接口
	admin := api.Group("/admin", middleware.RequireAuth(cfg.AppSecret), middleware.RequireAdmin())
	{
		admin.POST("/sync/filler", h.Admin.SyncFiller)
		admin.POST("/sync/episodes", h.Admin.SyncEpisodes)
		admin.POST("/cache/invalidate", h.Admin.InvalidateCache)
	}

	return r
}
