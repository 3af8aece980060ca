package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/config"
	"github.com/user/anitrack/internal/middleware"
	"github.com/user/anitrack/internal/repository"
	"github.com/user/anitrack/internal/utils"
)

// AuthHandler 注册登录
type AuthHandler struct {
	users *repository.UserRepository
	cfg   *config.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(users *repository.UserRepository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=2,max=30"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Register 注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	existing, err := h.users.FindByEmail(req.Email)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	if existing != nil {
		utils.Error(c, 409, "邮箱已被注册")
		return
	}

	user, err := h.users.Create(req.Email, req.Username, req.Password)
	if err != nil {
		utils.FromError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.cfg.AppSecret, h.cfg.JWTExpiry)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Created(c, authResponse{Token: token, User: user})
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	// 用户不存在和密码错误返回同一个提示，避免暴露邮箱是否注册
	if user == nil || !h.users.VerifyPassword(user, req.Password) {
		utils.Unauthorized(c, "邮箱或密码错误")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.cfg.AppSecret, h.cfg.JWTExpiry)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	utils.Success(c, authResponse{Token: token, User: user})
}

// Me 当前登录用户
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.users.FindByID(userID)
	if err != nil {
		utils.FromError(c, err)
		return
	}
	if user == nil {
		utils.Unauthorized(c, "")
		return
	}
	utils.Success(c, user)
}
