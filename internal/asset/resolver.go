// Package asset 把图片源地址解析为 Notion file_upload id：本地缓存 => 远端已上传列表 => 新建上传并轮询。
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/cache"
	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/imgx"
	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
	"github.com/John-Robertt/YuriAudio2Notion/internal/notion"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxWait      = 300 * time.Second
)

// Uploads 是 Resolver 需要的 Notion file upload 能力（*notion.Client 满足该接口）。
type Uploads interface {
	CreateFileUpload(ctx context.Context, req notion.CreateFileUploadRequest) (notion.FileUpload, error)
	RetrieveFileUpload(ctx context.Context, id string) (notion.FileUpload, error)
	ListFileUploads(ctx context.Context, cursor string) (notion.FileUploadList, error)
}

type Options struct {
	PollInterval time.Duration
	MaxWait      time.Duration

	// Coalesce=true 时，同一规范化 URL 的并发请求合并为一次解析。
	// 合并后的解析在脱离取消的 ctx 上运行：某个调用方取消只让它自己返回，其余调用方继续等待结果。
	// 默认关闭：并发的同 URL 请求可能各自上传一次，之后由缓存收敛。
	Coalesce bool
}

// Resolver 可被多个 goroutine 并发使用。
//
// 约束：
// - 不同 URL 的解析互不影响，唯一共享的可变状态是 AssetCache
// - 错误原样向上传播，不做内部重试
// - ctx 取消会中断轮询等待
type Resolver struct {
	cache   *cache.AssetCache
	uploads Uploads
	http    *http.Client
	logger  *logging.Logger

	pollInterval time.Duration
	maxWait      time.Duration
	coalesce     bool
	group        singleflight.Group

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(c *cache.AssetCache, uploads Uploads, hc *http.Client, opts Options, logger *logging.Logger) *Resolver {
	r := &Resolver{
		cache:        c,
		uploads:      uploads,
		http:         hc,
		logger:       logging.OrNop(logger).Component("asset"),
		pollInterval: opts.PollInterval,
		maxWait:      opts.MaxWait,
		coalesce:     opts.Coalesce,
		now:          time.Now,
		sleep:        sleepCtx,
	}
	if r.cache == nil {
		r.cache = cache.Open("", logger)
	}
	if r.http == nil {
		r.http = http.DefaultClient
	}
	if r.pollInterval <= 0 {
		r.pollInterval = DefaultPollInterval
	}
	if r.maxWait <= 0 {
		r.maxWait = DefaultMaxWait
	}
	return r
}

// Resolve 返回 sourceURL 对应的 file_upload id；logicalName 决定上传文件名（<logicalName>.<ext>）。
func (r *Resolver) Resolve(ctx context.Context, sourceURL, logicalName string) (string, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return "", ErrEmptyURL
	}
	if !r.coalesce {
		return r.resolve(ctx, sourceURL, logicalName)
	}
	// 共享的解析不受任一调用方取消的影响（仍受 MaxWait 约束）；各调用方只按自己的 ctx 停止等待。
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(cache.CanonicalURL(sourceURL), func() (any, error) {
		return r.resolve(shared, sourceURL, logicalName)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (r *Resolver) resolve(ctx context.Context, sourceURL, logicalName string) (string, error) {
	// 1) 本地缓存
	if id, ok := r.cache.Get(sourceURL); ok {
		r.logger.Debug("asset cache hit", "url", sourceURL, "upload_id", id)
		return id, nil
	}

	// 2) 远端已上传列表（按文件名匹配）
	format, err := r.sniff(ctx, sourceURL)
	if err != nil {
		return "", err
	}
	filename := imgx.FileName(logicalName, format)

	id, ok, err := r.findUploaded(ctx, filename)
	if err != nil {
		return "", err
	}
	if ok {
		r.logger.Info("reusing existing upload", "filename", filename, "upload_id", id)
		r.remember(sourceURL, id)
		return id, nil
	}

	// 3) 新建 external_url 上传并轮询到终态
	fu, err := r.uploads.CreateFileUpload(ctx, notion.CreateFileUploadRequest{
		Mode:        "external_url",
		Filename:    filename,
		ExternalURL: sourceURL,
	})
	if err != nil {
		return "", fmt.Errorf("创建文件上传失败：%w", err)
	}
	r.logger.Info("file upload created", "filename", filename, "upload_id", fu.ID)

	if err := r.wait(ctx, fu.ID, filename); err != nil {
		return "", err
	}
	r.remember(sourceURL, fu.ID)
	return fu.ID, nil
}

// sniff 只读取前 imgx.SniffLen 字节判断格式。
func (r *Resolver) sniff(ctx context.Context, sourceURL string) (imgx.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", &UpstreamFetchError{URL: sourceURL, Err: err}
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", imgx.SniffLen-1))

	resp, err := r.http.Do(req)
	if err != nil {
		return "", &UpstreamFetchError{URL: sourceURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamFetchError{URL: sourceURL, StatusCode: resp.StatusCode}
	}

	head := make([]byte, imgx.SniffLen)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", &UpstreamFetchError{URL: sourceURL, Err: err}
	}
	return imgx.Sniff(head[:n]), nil
}

// findUploaded 完整遍历分页列表；只复用已到达 uploaded 的上传。
func (r *Resolver) findUploaded(ctx context.Context, filename string) (string, bool, error) {
	cursor := ""
	for {
		page, err := r.uploads.ListFileUploads(ctx, cursor)
		if err != nil {
			return "", false, fmt.Errorf("列出已上传文件失败：%w", err)
		}
		for _, f := range page.Results {
			if f.Filename == filename && f.ID != "" && f.Status == notion.UploadUploaded {
				return f.ID, true, nil
			}
		}
		if !page.HasMore || page.NextCursor == "" {
			return "", false, nil
		}
		cursor = page.NextCursor
	}
}

func (r *Resolver) wait(ctx context.Context, id, filename string) error {
	start := r.now()
	for r.now().Sub(start) < r.maxWait {
		fu, err := r.uploads.RetrieveFileUpload(ctx, id)
		if err != nil {
			return fmt.Errorf("查询文件上传状态失败：%w", err)
		}

		switch fu.Status {
		case notion.UploadUploaded:
			r.logger.Info("file uploaded", "filename", filename, "upload_id", id)
			return nil
		case notion.UploadFailed:
			return &UploadFailure{UploadID: id, Filename: filename, Detail: fu.FailureDetail()}
		case notion.UploadPending:
			r.logger.Debug("file upload pending", "upload_id", id, "retry_in", r.pollInterval)
		default:
			r.logger.Warn("unexpected file upload status, continuing to wait", "upload_id", id, "status", fu.Status)
		}

		if err := r.sleep(ctx, r.pollInterval); err != nil {
			return err
		}
	}
	return &UploadTimeout{UploadID: id, Filename: filename, Waited: r.maxWait}
}

// remember 写缓存；落盘失败只记录日志，id 本身仍然有效。
func (r *Resolver) remember(sourceURL, id string) {
	if err := r.cache.Set(sourceURL, id); err != nil {
		r.logger.Warn("failed to persist asset cache", "url", sourceURL, "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
