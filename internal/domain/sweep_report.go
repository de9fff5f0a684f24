package domain

import (
	"sort"
	"time"
)

const (
	MoveStatusMoved  = "moved"
	MoveStatusFailed = "failed"
)

// SweepReport 是去重清扫的稳定输出。每次调用重新计算，从不持久化分组结果。
type SweepReport struct {
	Root           string `json:"root"`
	QuarantineRoot string `json:"quarantine_root"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary SweepSummary `json:"summary"`
	Moves   []MoveResult `json:"moves"`
}

type SweepSummary struct {
	Scanned         int `json:"scanned"`          // 快照中的全部文件
	Matched         int `json:"matched"`          // 符合规范文件名文法的文件
	Groups          int `json:"groups"`           // (指纹, 大小) 分组数
	DuplicateGroups int `json:"duplicate_groups"` // 成员数 > 1 的分组数
	Kept            int `json:"kept"`             // 每个重复分组保留 1 个
	Moved           int `json:"moved"`
	Failed          int `json:"failed"`
}

// MoveResult 记录一次隔离搬移（或其失败；单个失败不终止清扫）。
type MoveResult struct {
	Fingerprint string `json:"fingerprint"`
	Size        int64  `json:"size"`
	Src         string `json:"src"` // 相对 root
	Dst         string `json:"dst"` // 相对 quarantine root
	Status      string `json:"status"`
	ErrorMsg    string `json:"error_msg"`
}

// Finalize 统一 UTC、按 Src 稳定排序，并由 moves 重算 Moved/Failed。
func (r *SweepReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Moves, func(i, j int) bool { return r.Moves[i].Src < r.Moves[j].Src })

	r.Summary.Moved = 0
	r.Summary.Failed = 0
	for _, m := range r.Moves {
		switch m.Status {
		case MoveStatusMoved:
			r.Summary.Moved++
		case MoveStatusFailed:
			r.Summary.Failed++
		}
	}
}
