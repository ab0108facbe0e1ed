package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/YuriAudio2Notion/internal/app/run"
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/fsx"
	"github.com/John-Robertt/YuriAudio2Notion/internal/scan"
)

type syncFlags struct {
	input       string
	page        string
	fields      []string
	audio       string
	concurrency int
	report      string
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var f syncFlags
	cmd := &cobra.Command{
		Use:   "sync [url-or-id ...]",
		Short: "同步一个或多个专辑（或单集音频）",
		Long: `不带 --page/--fields/--audio 时为批量模式：每个专辑新建一页，并发执行。
带这些参数时只能给出一个专辑：--page 更新已有页面，--fields 只写指定字段，--audio 同步单集。
stdout 非终端时只输出一个 RunReport JSON（日志与进度走 stderr）。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := append([]string(nil), args...)
			if f.input != "" {
				more, err := scan.RefsFile(f.input)
				if err != nil {
					return fmt.Errorf("读取 --input 失败：%w", err)
				}
				refs = append(refs, more...)
			}
			if len(refs) == 0 {
				return errors.New("至少需要一个专辑链接或 ID")
			}
			single := f.page != "" || len(f.fields) > 0 || f.audio != ""
			if single && len(refs) != 1 {
				return errors.New("--page/--fields/--audio 只能用于单个专辑")
			}

			cfg, log, err := ctx.ensure()
			if err != nil {
				return err
			}
			defer log.Sync()

			p, err := buildProcessor(cfg, log, f.audio != "")
			if err != nil {
				return err
			}

			var rr domain.RunReport
			if single {
				rr = syncOne(cmd, p, refs[0], f)
			} else {
				workers := cfg.Sync.Concurrency
				if cmd.Flags().Changed("concurrency") {
					workers = f.concurrency
				}
				var obs run.Observer
				if w, ok := pickProgressWriter(); ok {
					obs = newProgressUI(w)
				}
				rr = run.ExecuteWithObserver(cmd.Context(), p, refs, workers, obs)
			}

			if f.report != "" {
				if err := fsx.WriteJSONAtomic(f.report, rr); err != nil {
					fmt.Fprintf(os.Stderr, "写入报告失败：%v\n", err)
				}
			}
			emitReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), rr, isTerminal(os.Stdout))
			if rr.Summary.Failed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "从文件读取专辑列表（每行一个，# 为注释；- 表示 stdin）")
	cmd.Flags().StringVar(&f.page, "page", "", "更新已有的 Notion 页面而不是新建")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "只写这些字段（标识符或属性名，逗号分隔；需要 --page）")
	cmd.Flags().StringVar(&f.audio, "audio", "", "同步该专辑下的单集音频（audio_id）")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "批量模式的并发数（默认取 sync.concurrency）")
	cmd.Flags().StringVar(&f.report, "report", "", "额外把 RunReport 写入该文件")
	return cmd
}

// syncOne 走单条同步，结果同样包装成 RunReport，保持输出契约一致。
func syncOne(cmd *cobra.Command, p *run.Processor, ref string, f syncFlags) domain.RunReport {
	rr := domain.RunReport{StartedAt: time.Now().UTC()}

	var (
		res run.Result
		err error
	)
	if f.audio != "" {
		res, err = p.SyncAudio(cmd.Context(), run.AudioRequest{AlbumRef: ref, AudioID: f.audio, PageID: f.page, Fields: f.fields})
	} else {
		res, err = p.SyncAlbum(cmd.Context(), run.AlbumRequest{Ref: ref, PageID: f.page, Fields: f.fields})
	}

	it := domain.ItemResult{
		Ref:     ref,
		AlbumID: res.AlbumID,
		Name:    res.Name,
		PageID:  res.PageID,
		Status:  domain.StatusProcessed,
		Fields:  res.Fields,
	}
	if err != nil {
		it.Status = domain.StatusFailed
		it.ErrorCode = run.ErrorCode(err)
		it.ErrorMsg = run.Message(err)
		it.Fields = nil
	}
	rr.Items = []domain.ItemResult{it}
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// emitReport：stdout 是终端时打印摘要（失败明细走 stderr）；否则 stdout 只输出一个 JSON。
func emitReport(stdout, stderr io.Writer, rr domain.RunReport, tty bool) {
	summary := fmt.Sprintf("完成：processed=%d failed=%d", rr.Summary.Processed, rr.Summary.Failed)
	if !tty {
		enc := json.NewEncoder(stdout)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(rr)
		fmt.Fprintln(stderr, summary)
		return
	}

	fmt.Fprintln(stdout, summary)
	for _, it := range rr.Items {
		if it.Status == domain.StatusProcessed {
			fmt.Fprintf(stdout, "  %s %s -> %s\n", it.AlbumID, truncate(it.Name, 40), it.PageID)
			continue
		}
		key := it.AlbumID
		if key == "" {
			key = it.Ref
		}
		fmt.Fprintf(stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
