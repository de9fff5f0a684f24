package domain

import (
	"sort"
	"time"
)

const (
	StatusPlaced      = "placed"
	StatusReplaced    = "replaced"
	StatusRemovedSrc  = "removed_src"
	StatusQuarantined = "quarantined"
	StatusError       = "error"
)

const (
	ErrCodeFingerprintFailed = "fingerprint_failed"
	ErrCodeConflictIO        = "conflict_io_failed"
	ErrCodeMoveFailed        = "move_failed"
	ErrCodeIOFailed          = "io_failed"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// RunReport 是归档流水线对外的稳定输出（stdout JSON / report.json）。
//
// 引擎不持有进程级可变计数器：每次调用返回一个独立的 RunReport，
// 使流水线可重入、可独立测试。
type RunReport struct {
	SourceRoot string `json:"source_root"`
	DestRoot   string `json:"dest_root"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary RunSummary   `json:"summary"`
	Items   []ItemResult `json:"items"`
}

// RunSummary 满足守恒：Analyzed == Placed+Replaced+RemovedSrc+Quarantined+Errors。
type RunSummary struct {
	Analyzed    int `json:"analyzed"`
	Placed      int `json:"placed"`
	Replaced    int `json:"replaced"`
	RemovedSrc  int `json:"removed_src"`
	Quarantined int `json:"quarantined"`
	Errors      int `json:"errors"`
}

type ItemResult struct {
	Src        string `json:"src"` // 相对 source root
	Dst        string `json:"dst"` // 相对 dest root；未落位时为空
	Kind       string `json:"kind"`
	DateSource string `json:"date_source"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 Src 字典序；Src=="" 的合成条目排在最后
// 3) summary 由 items 计算得出（守恒由构造保证）
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Src
		b := r.Items[j].Src
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s RunSummary
	s.Analyzed = len(r.Items)
	for _, it := range r.Items {
		switch it.Status {
		case StatusPlaced:
			s.Placed++
		case StatusReplaced:
			s.Replaced++
		case StatusRemovedSrc:
			s.RemovedSrc++
		case StatusQuarantined:
			s.Quarantined++
		case StatusError:
			s.Errors++
		}
	}
	r.Summary = s
}
