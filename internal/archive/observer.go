package archive

import (
	"time"

	"github.com/John-Robertt/mediark/internal/domain"
)

// Observer 用于把“运行进度/条目结果”从核心执行流程中解耦出来。
//
// 约束：archive 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(opts Options)
	// OnScanDone 在扫描快照完成后调用。
	OnScanDone(total int, dur time.Duration)
	// OnItemDone 在单个条目达到终态后调用（每个条目一行输出的来源）。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
}
