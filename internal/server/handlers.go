package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/YuriAudio2Notion/internal/app/run"
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
	"github.com/John-Robertt/YuriAudio2Notion/internal/notion"
)

// uploadURLProperty 是 Notion 自动化页面里填写专辑链接的 URL 属性名。
const uploadURLProperty = "Upload URL"

type handler struct {
	syncer Syncer
	log    *logging.Logger
}

func (h *handler) health(c *gin.Context) {
	c.String(http.StatusOK, "YuriAudio2Notion webhook server is running")
}

// databasePayload 是 Notion 数据库自动化（Send webhook）的请求体。
type databasePayload struct {
	Data *struct {
		ID     string        `json:"id"`
		Parent notion.Parent `json:"parent"`

		Properties map[string]struct {
			URL *string `json:"url"`
		} `json:"properties"`
	} `json:"data"`
}

// webhookDatabase：用户在数据库的空白页里填入链接，自动化把整页回调过来；原页面就地补全。
func (h *handler) webhookDatabase(c *gin.Context) {
	var p databasePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "请求体必须是 JSON")
		return
	}
	if p.Data == nil || strings.TrimSpace(p.Data.ID) == "" {
		badRequest(c, "Notion 数据缺少 data.id")
		return
	}
	prop, ok := p.Data.Properties[uploadURLProperty]
	if !ok {
		badRequest(c, "Notion 数据缺少属性："+uploadURLProperty)
		return
	}
	if prop.URL == nil || strings.TrimSpace(*prop.URL) == "" {
		c.JSON(http.StatusOK, gin.H{"status": "warning", "message": uploadURLProperty + " 为空"})
		return
	}

	res, err := h.syncer.SyncAlbum(c.Request.Context(), run.AlbumRequest{
		Ref:    *prop.URL,
		PageID: p.Data.ID,
		Parent: p.Data.Parent,
	})
	h.respond(c, res, err)
}

// webhookPage：链接放在 url 请求头里（Notion 按钮只能配置请求头）。
func (h *handler) webhookPage(c *gin.Context) {
	ref := strings.TrimSpace(c.GetHeader("url"))
	if ref == "" {
		badRequest(c, "请求头缺少 url")
		return
	}
	res, err := h.syncer.SyncAlbum(c.Request.Context(), run.AlbumRequest{Ref: ref})
	h.respond(c, res, err)
}

type urlRequest struct {
	URL string `json:"url"`
}

func (h *handler) webhookURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		badRequest(c, "缺少 url 参数")
		return
	}
	res, err := h.syncer.SyncAlbum(c.Request.Context(), run.AlbumRequest{Ref: req.URL})
	h.respond(c, res, err)
}

type updateRequest struct {
	URL    string   `json:"url"`
	PageID string   `json:"page_id"`
	Fields []string `json:"fields"`
}

// webhookUpdate 只刷新已有页面的指定字段（例如播放量）。
func (h *handler) webhookUpdate(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体必须是 JSON")
		return
	}
	if strings.TrimSpace(req.URL) == "" || strings.TrimSpace(req.PageID) == "" || len(req.Fields) == 0 {
		badRequest(c, "url、page_id、fields 均为必填")
		return
	}
	res, err := h.syncer.SyncAlbum(c.Request.Context(), run.AlbumRequest{
		Ref:    req.URL,
		PageID: req.PageID,
		Fields: req.Fields,
	})
	h.respond(c, res, err)
}

type audioRequest struct {
	URL     string   `json:"url"`
	AudioID string   `json:"audio_id"`
	PageID  string   `json:"page_id"`
	Fields  []string `json:"fields"`
}

func (h *handler) webhookAudio(c *gin.Context) {
	var req audioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体必须是 JSON")
		return
	}
	if strings.TrimSpace(req.URL) == "" || strings.TrimSpace(req.AudioID) == "" {
		badRequest(c, "url、audio_id 均为必填")
		return
	}
	res, err := h.syncer.SyncAudio(c.Request.Context(), run.AudioRequest{
		AlbumRef: req.URL,
		AudioID:  req.AudioID,
		PageID:   req.PageID,
		Fields:   req.Fields,
	})
	h.respond(c, res, err)
}

func (h *handler) respond(c *gin.Context, res run.Result, err error) {
	if err != nil {
		code := run.ErrorCode(err)
		h.log.Error("sync failed",
			"album_id", res.AlbumID,
			"audio_id", res.AudioID,
			"error_code", code,
			"error", err,
			"request_id", RequestIDFrom(c),
		)
		c.JSON(statusFor(code), gin.H{
			"status":     "error",
			"message":    run.Message(err),
			"error_code": code,
			"album_id":   res.AlbumID,
		})
		return
	}

	body := gin.H{
		"status":   "success",
		"message":  "Webhook received and data processed!",
		"album_id": res.AlbumID,
		"name":     res.Name,
		"page_id":  res.PageID,
		"created":  res.Created,
		"fields":   nonNil(res.Fields),
	}
	if res.AudioID != "" {
		body["audio_id"] = res.AudioID
	}
	if res.PageURL != "" {
		body["page_url"] = res.PageURL
	}
	if len(res.Unknown) > 0 {
		body["ignored_fields"] = res.Unknown
	}
	c.JSON(http.StatusOK, body)
}

// statusFor 把同步错误码映射为 HTTP 状态码。
func statusFor(code string) int {
	switch code {
	case domain.ErrCodeInvalidRef, domain.ErrCodeInvalidFields:
		return http.StatusBadRequest
	case domain.ErrCodeFetchFailed, domain.ErrCodeAssetFailed, domain.ErrCodeNotionFailed:
		return http.StatusBadGateway
	case domain.ErrCodeAssetTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": msg})
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
