package apperr

import (
	"errors"
	"fmt"
)

// 业务错误分类，handler 层据此映射 HTTP 状态码
var (
	// ErrNotFound 实体不存在（追番条目、俱乐部、影评等）
	ErrNotFound = errors.New("not found")
	// ErrConflict 重复创建（同一用户对同一动画重复发影评等）
	ErrConflict = errors.New("conflict")
	// ErrForbidden 缺少成员资格或所有权
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream 上游目录（AniList）请求失败
	ErrUpstream = errors.New("upstream unavailable")
)

// NotFoundf 带上下文包装 ErrNotFound
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf 带上下文包装 ErrConflict
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// Forbiddenf 带上下文包装 ErrForbidden
func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

// Upstreamf 带上游原始错误信息包装 ErrUpstream
func Upstreamf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrUpstream)...)
}
