package utils

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/user/anitrack/internal/apperr"
)

// Response 统一API响应结构
type Response struct {
	Code    int         `json:"code"`    // 状态码
	Message string      `json:"message"` // 消息
	Data    interface{} `json:"data"`    // 数据
	Success bool        `json:"success"` // 是否成功
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    200,
		Message: "success",
		Data:    data,
		Success: true,
	})
}

// Created 返回201响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    201,
		Message: "created",
		Data:    data,
		Success: true,
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
		Success: false,
	})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "未登录"
	}
	Error(c, 401, message)
}

// FromError 把业务错误映射为对应的 HTTP 状态码
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		Error(c, 404, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		Error(c, 409, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Error(c, 403, err.Error())
	case errors.Is(err, apperr.ErrUpstream):
		Error(c, 502, err.Error())
	default:
		log.Printf("[API] 内部错误: %v", err)
		Error(c, 500, "服务器内部错误")
	}
}
