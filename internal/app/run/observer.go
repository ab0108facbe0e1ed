package run

import (
	"time"

	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
)

// Observer 用于把“批量进度/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - Observer 的实现必须并发安全：事件可能来自多个 goroutine。
type Observer interface {
	// OnStart 在派发任何条目之前调用。
	OnStart(total, workers int)
	// OnItemDone 在某个专辑处理完成时调用（idx 从 1 开始，按完成顺序递增）。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
}
