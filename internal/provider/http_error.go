package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
// Source 可以返回该错误，让上层生成更可操作的 error_msg。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// APIError 表示 HTTP 成功但响应信封里没有 data；Code/Message 原样取自信封。
type APIError struct {
	URL     string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("api code=%d", e.Code)
	}
	return fmt.Sprintf("api code=%d: %s", e.Code, msg)
}
