package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/YuriAudio2Notion/internal/config"
	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "yuriaudio",
		Short:         "把饭角专辑同步到 Notion 数据库",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "配置文件路径（默认 ./"+config.FileName+"）")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newSyncCommand(ctx))
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newCacheCommand(ctx))
	return rootCmd
}

// commandContext 延迟加载配置与日志：parse 这类离线命令不需要配置文件。
type commandContext struct {
	configFlag *string

	once   sync.Once
	cfg    config.Config
	logger *logging.Logger
	err    error
}

func (c *commandContext) ensure() (config.Config, *logging.Logger, error) {
	c.once.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, err := config.Load(path)
		if err != nil {
			c.err = err
			return
		}
		log, err := logging.New(cfg.Logging.Mode, cfg.Logging.Level)
		if err != nil {
			c.err = err
			return
		}
		if resolved != "" {
			log.Debug("config loaded", "path", resolved)
		}
		c.cfg, c.logger = cfg, log
	})
	return c.cfg, c.logger, c.err
}
