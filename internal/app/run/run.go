package run

import (
	"context"
	"sync"
	"time"

	"github.com/John-Robertt/YuriAudio2Notion/internal/app"
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
)

// Execute 批量新建专辑页面，并返回对外稳定的 RunReport。
// 单条失败只体现在对应 item 上，不影响其他条目。
func Execute(ctx context.Context, p *Processor, refs []string, concurrency int) domain.RunReport {
	return ExecuteWithObserver(ctx, p, refs, concurrency, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出进度（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, p *Processor, refs []string, concurrency int, obs Observer) domain.RunReport {
	rr := domain.RunReport{
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, len(refs)),
	}

	items, invalid := app.GroupByAlbum(refs)
	for _, inv := range invalid {
		rr.Items = append(rr.Items, domain.ItemResult{
			Ref:       inv.Ref,
			Status:    domain.StatusFailed,
			ErrorCode: domain.ErrCodeInvalidRef,
			ErrorMsg:  inv.Err.Error(),
		})
	}

	// 按专辑并发（worker pool），专辑内串行。
	workers := concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}
	if obs != nil {
		obs.OnStart(len(items), workers)
	}

	type execResult struct {
		res domain.ItemResult
		dur time.Duration
	}

	jobs := make(chan app.WorkItem)
	results := make(chan execResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				started := time.Now()
				r := execOne(ctx, p, it)
				results <- execResult{res: r, dur: time.Since(started)}
			}
		}()
	}

	go func() {
		for _, it := range items {
			jobs <- it
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for it := range results {
		done++
		rr.Items = append(rr.Items, it.res)
		if obs != nil {
			obs.OnItemDone(done, len(items), it.res, it.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func execOne(ctx context.Context, p *Processor, it app.WorkItem) domain.ItemResult {
	out := domain.ItemResult{
		Ref:     it.Refs[0],
		AlbumID: it.AlbumID,
	}
	res, err := p.SyncAlbum(ctx, AlbumRequest{Ref: it.AlbumID})
	out.Name = res.Name
	out.PageID = res.PageID
	out.Fields = res.Fields
	if err != nil {
		out.Status = domain.StatusFailed
		out.ErrorCode = ErrorCode(err)
		if out.ErrorCode == "" {
			out.ErrorCode = domain.ErrCodeNotionFailed
		}
		out.ErrorMsg = Message(err)
		out.Fields = nil
		return out
	}
	out.Status = domain.StatusProcessed
	return out
}
