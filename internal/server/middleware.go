package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
)

const (
	// HeaderAPIKey 是 webhook 鉴权头；也可以用查询参数 api_key。
	HeaderAPIKey    = "YURI-API-KEY"
	HeaderRequestID = "X-Request-ID"

	ctxRequestIDKey = "request_id"
)

// RequireAPIKey 校验 YURI-API-KEY 头或 api_key 查询参数。
// key 为空时放行所有请求（每次都记一条警告，提醒部署方补上）。
func RequireAPIKey(key string, log *logging.Logger) gin.HandlerFunc {
	log = logging.OrNop(log)
	want := []byte(strings.TrimSpace(key))
	return func(c *gin.Context) {
		if len(want) == 0 {
			log.Warn("api key not configured, skipping validation", "path", c.Request.URL.Path)
			c.Next()
			return
		}
		got := c.GetHeader(HeaderAPIKey)
		if got == "" {
			got = c.Query("api_key")
		}
		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			log.Warn("invalid api key", "path", c.Request.URL.Path, "request_id", RequestIDFrom(c))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "未授权访问"})
			return
		}
		c.Next()
	}
}

// RequestID 沿用调用方给出的 X-Request-ID，否则生成一个 uuid，并回写到响应头。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestIDKey)
}

// RequestLogger 在请求结束后按状态码分级记一条日志。
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	log = logging.OrNop(log)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFrom(c),
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
