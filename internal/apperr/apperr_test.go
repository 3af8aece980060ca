package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelWrapping(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{NotFoundf("动画 %d 不存在", 20), ErrNotFound},
		{Conflictf("重复条目"), ErrConflict},
		{Forbiddenf("无权限"), ErrForbidden},
		{Upstreamf("上游超时"), ErrUpstream},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%v 应匹配哨兵 %v", tt.err, tt.sentinel)
		}
	}
}

func TestWrappedTwice(t *testing.T) {
	inner := NotFoundf("动画 %d 不存在", 20)
	outer := fmt.Errorf("查询失败: %w", inner)
	if !errors.Is(outer, ErrNotFound) {
		t.Error("二次包装后仍应匹配哨兵")
	}
}

func TestMessageFormatting(t *testing.T) {
	err := NotFoundf("动画 %d 不存在", 20)
	want := "动画 20 不存在: not found"
	if err.Error() != want {
		t.Errorf("错误消息 = %q, want %q", err.Error(), want)
	}
}
