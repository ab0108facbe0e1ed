package notion

import (
	"errors"
	"fmt"
	"strings"
)

// APIError 是 Notion 返回的非 2xx 响应。
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return "notion api error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("notion HTTP %d code=%s", e.Status, e.Code)
	}
	return fmt.Sprintf("notion HTTP %d code=%s: %s", e.Status, e.Code, msg)
}

// IsNotFound 报告 err 是否为 Notion 的 404 / object_not_found。
func IsNotFound(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Status == 404 || ae.Code == "object_not_found"
}

// IsRateLimited 报告 err 是否为 429。
func IsRateLimited(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == 429
}
