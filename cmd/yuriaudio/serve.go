package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/YuriAudio2Notion/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 webhook 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.ensure()
			if err != nil {
				return err
			}
			defer log.Sync()

			// 同一个 data_dir 只允许一个 serve：两个进程各自持有缓存快照会互相覆盖。
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("创建 data_dir 失败：%w", err)
			}
			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("获取进程锁失败：%w", err)
			}
			if !ok {
				return fmt.Errorf("已有 serve 实例在使用 %s", cfg.DataDir)
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					log.Warn("failed to release lock", "path", cfg.LockPath(), "error", err)
				}
			}()

			p, err := buildProcessor(cfg, log, false)
			if err != nil {
				return err
			}
			if cfg.Server.APIKey == "" {
				log.Warn("api key not configured, webhooks are unauthenticated")
			}

			if isProduction(cfg.Logging.Mode) {
				gin.SetMode(gin.ReleaseMode)
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := server.NewRouter(server.Options{APIKey: cfg.Server.APIKey, Syncer: p, Logger: log})
			return server.Serve(runCtx, cfg.Addr(), router, log)
		},
	}
}

func isProduction(mode string) bool {
	return mode == "production" || mode == "prod"
}
