package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/John-Robertt/YuriAudio2Notion/internal/app/run"
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是批量同步的终端进度输出。
//
// 约束：
// - 所有输出写到 stderr，不污染 stdout 的 JSON 契约
// - 封面导入可能等待数分钟：长时间没有条目完成时定期补一行 keepalive
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	workers int
	total   int
	done    int
	ok      int
	fail    int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 10 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(total, workers int) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = now
	p.total = total
	p.workers = workers
	fmt.Fprintf(p.w, "[%s] yuriaudio sync: albums=%d workers=%d\n", now.Format("15:04:05"), total, workers)
	p.lastPrinted = now
	if total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch res.Status {
	case domain.StatusProcessed:
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK %s fields=%d (%s)\n",
			idx, total, res.AlbumID, truncate(res.Name, 40), len(res.Fields), formatShortDuration(dur),
		)
	default:
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, total, res.AlbumID, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	}
	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	go func() {
		t := time.NewTicker(p.tickerInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if time.Since(p.lastPrinted) > p.keepaliveThreshold {
					fmt.Fprintln(p.w, p.progressLineLocked())
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) progressLineLocked() string {
	active := p.workers
	if remain := p.total - p.done; remain < active {
		active = remain
	}
	return fmt.Sprintf("进度: done=%d/%d ok=%d fail=%d active=%d elapsed=%s",
		p.done, p.total, p.ok, p.fail, active, formatElapsed(time.Since(p.startedAt)),
	)
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

