// Package notion 是 Notion REST API 的最小客户端：页面创建/更新与 file upload。
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2025-09-03"
	DefaultIcon    = "🎧"

	// Notion 对单个集成的平均限速约为 3 次/秒。
	DefaultRatePerSecond = 3
)

const maxBodyBytes = 4 << 20

// Client 是线程安全的；所有请求共享同一个限速器。
type Client struct {
	baseURL string
	token   string
	version string
	icon    string

	http    *http.Client
	limiter *rate.Limiter
}

type Options struct {
	BaseURL       string
	Version       string
	Icon          string
	RatePerSecond float64
	HTTP          *http.Client
}

func New(token string, opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		token:   strings.TrimSpace(token),
		version: strings.TrimSpace(opts.Version),
		icon:    opts.Icon,
		http:    opts.HTTP,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.icon == "" {
		c.icon = DefaultIcon
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	rps := opts.RatePerSecond
	if rps <= 0 {
		rps = DefaultRatePerSecond
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	return c
}

// Parent 是新页面的父级：优先 data source，兼容旧的 database 父级。
type Parent struct {
	DataSourceID string `json:"data_source_id,omitempty"`
	DatabaseID   string `json:"database_id,omitempty"`
}

func (p Parent) empty() bool {
	return strings.TrimSpace(p.DataSourceID) == "" && strings.TrimSpace(p.DatabaseID) == ""
}

type icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

// Page 只保留调用方需要的字段。
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePage 在 parent 下新建页面（带固定 emoji 图标）。
func (c *Client) CreatePage(ctx context.Context, parent Parent, props Properties) (Page, error) {
	if parent.empty() {
		return Page{}, errors.New("parent 不能为空")
	}
	body := struct {
		Parent     Parent     `json:"parent"`
		Icon       icon       `json:"icon"`
		Properties Properties `json:"properties"`
	}{parent, icon{Type: "emoji", Emoji: c.icon}, props}

	var p Page
	err := c.do(ctx, http.MethodPost, "/pages", nil, body, &p)
	return p, err
}

// UpdatePage 只覆盖 props 中出现的属性；未出现的属性保持不变。
func (c *Client) UpdatePage(ctx context.Context, pageID string, props Properties) (Page, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return Page{}, errors.New("page_id 不能为空")
	}
	body := struct {
		Icon       icon       `json:"icon"`
		Properties Properties `json:"properties"`
	}{icon{Type: "emoji", Emoji: c.icon}, props}

	var p Page
	err := c.do(ctx, http.MethodPatch, "/pages/"+url.PathEscape(pageID), nil, body, &p)
	return p, err
}

// file upload 状态。
const (
	UploadPending  = "pending"
	UploadUploaded = "uploaded"
	UploadFailed   = "failed"
	UploadExpired  = "expired"
)

type FileUpload struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	Filename         string            `json:"filename"`
	FileImportResult *FileImportResult `json:"file_import_result,omitempty"`
}

type FileImportResult struct {
	Type  string       `json:"type"`
	Error *ImportError `json:"error,omitempty"`
}

type ImportError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FailureDetail 返回导入失败的原因（无详情时为空）。
func (f FileUpload) FailureDetail() string {
	r := f.FileImportResult
	if r == nil || r.Type != "error" || r.Error == nil {
		return ""
	}
	return strings.TrimSpace(r.Error.Message)
}

type FileUploadList struct {
	Results    []FileUpload `json:"results"`
	NextCursor string       `json:"next_cursor"`
	HasMore    bool         `json:"has_more"`
}

// CreateFileUploadRequest 目前只用到 external_url 模式。
type CreateFileUploadRequest struct {
	Mode        string `json:"mode"`
	Filename    string `json:"filename"`
	ExternalURL string `json:"external_url,omitempty"`
}

func (c *Client) CreateFileUpload(ctx context.Context, req CreateFileUploadRequest) (FileUpload, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return FileUpload{}, errors.New("filename 不能为空")
	}
	var f FileUpload
	err := c.do(ctx, http.MethodPost, "/file_uploads", nil, req, &f)
	return f, err
}

func (c *Client) RetrieveFileUpload(ctx context.Context, id string) (FileUpload, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return FileUpload{}, errors.New("file_upload id 不能为空")
	}
	var f FileUpload
	err := c.do(ctx, http.MethodGet, "/file_uploads/"+url.PathEscape(id), nil, nil, &f)
	return f, err
}

// ListFileUploads 返回一页结果；cursor 为空表示第一页。
func (c *Client) ListFileUploads(ctx context.Context, cursor string) (FileUploadList, error) {
	q := url.Values{}
	q.Set("page_size", "100")
	if cursor = strings.TrimSpace(cursor); cursor != "" {
		q.Set("start_cursor", cursor)
	}
	var l FileUploadList
	err := c.do(ctx, http.MethodGet, "/file_uploads", q, nil, &l)
	return l, err
}

type errorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	if c.token == "" {
		return errors.New("notion token 未配置")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("编码请求失败：%w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(b, &eb)
		return &APIError{Status: resp.StatusCode, Code: eb.Code, Message: eb.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("解析 notion 响应失败：%w", err)
	}
	return nil
}
