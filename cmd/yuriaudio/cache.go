package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "查看或清理封面缓存（URL -> file_upload id）",
	}

	open := func() (*cache.AssetCache, error) {
		cfg, log, err := ctx.ensure()
		if err != nil {
			return nil, err
		}
		return cache.Open(cfg.CachePath(), log), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "列出全部缓存条目",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), c.All(), isTerminal(os.Stdout))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get URL",
		Short: "查询一张图片的 file_upload id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			id, ok := c.Get(args[0])
			if !ok {
				return &exitError{code: 1}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "清空缓存（之后的同步会重新查找或上传图片）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			n := c.Len()
			if err := c.Clear(); err != nil {
				return fmt.Errorf("清空缓存失败：%w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "已清除 %d 条缓存：%s\n", n, c.Path())
			return nil
		},
	})
	return cmd
}

// writeEntries：终端输出表格，否则输出 JSON 对象。
func writeEntries(w io.Writer, entries map[string]string, tty bool) error {
	if !tty {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	urls := make([]string, 0, len(entries))
	for u := range entries {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	rows := make([][]string, 0, len(urls))
	for _, u := range urls {
		rows = append(rows, []string{u, entries[u]})
	}
	fmt.Fprintln(w, renderTable([]string{"URL", "File Upload ID"}, rows))
	return nil
}
