package asset

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyURL 表示调用方没有给出图片地址。
var ErrEmptyURL = errors.New("图片地址为空")

// UpstreamFetchError 表示探测图片格式时无法读取源图片。
type UpstreamFetchError struct {
	URL        string
	StatusCode int // 0 表示请求本身失败（见 Err）
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("读取源图片失败：HTTP %d url=%s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("读取源图片失败：url=%s: %v", e.URL, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// UploadFailure 表示 Notion 报告导入失败（终态）。
type UploadFailure struct {
	UploadID string
	Filename string
	Detail   string
}

func (e *UploadFailure) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("文件上传失败：id=%s filename=%s", e.UploadID, e.Filename)
	}
	return fmt.Sprintf("文件上传失败：id=%s filename=%s: %s", e.UploadID, e.Filename, e.Detail)
}

// UploadTimeout 表示在最长等待时间内没有到达终态。
type UploadTimeout struct {
	UploadID string
	Filename string
	Waited   time.Duration
}

func (e *UploadTimeout) Error() string {
	return fmt.Sprintf("文件上传超时（%s）：id=%s filename=%s", e.Waited, e.UploadID, e.Filename)
}

// IsTimeout 报告 err 链中是否有 *UploadTimeout。
func IsTimeout(err error) bool {
	var t *UploadTimeout
	return errors.As(err, &t)
}
