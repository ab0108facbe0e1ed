package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/YuriAudio2Notion/internal/app/run"
	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
)

// Syncer 是 webhook 需要的同步能力（*run.Processor 满足该接口）。
type Syncer interface {
	SyncAlbum(ctx context.Context, req run.AlbumRequest) (run.Result, error)
	SyncAudio(ctx context.Context, req run.AudioRequest) (run.Result, error)
}

type Options struct {
	APIKey string
	Syncer Syncer
	Logger *logging.Logger
}

// NewRouter 组装 gin 路由：健康检查公开，webhook 需要 API key。
func NewRouter(opts Options) *gin.Engine {
	log := logging.OrNop(opts.Logger).Component("server")
	h := &handler{syncer: opts.Syncer, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))

	r.GET("/", h.health)

	hooks := r.Group("/")
	hooks.Use(RequireAPIKey(opts.APIKey, log))
	{
		hooks.POST("/webhook-database", h.webhookDatabase)
		hooks.POST("/webhook-page", h.webhookPage)
		hooks.POST("/webhook-url", h.webhookURL)
		hooks.POST("/webhook-update", h.webhookUpdate)
		hooks.POST("/webhook-audio", h.webhookAudio)
	}
	return r
}

// Serve 监听 addr 直到 ctx 结束，然后优雅关闭。
//
// 约束：
// - 不设置 WriteTimeout：一次同步可能要等待封面导入数分钟
// - 关闭最多等待 shutdownGrace，未完成的请求随之取消
func Serve(ctx context.Context, addr string, h http.Handler, log *logging.Logger) error {
	log = logging.OrNop(log).Component("server")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败：%w", addr, err)
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info("server listening", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	log.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 server 失败：%w", err)
	}
	return nil
}

const shutdownGrace = 10 * time.Second
