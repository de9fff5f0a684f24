package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/John-Robertt/mediark/internal/domain"
)

// 输出契约（固定）：
// - stdout 非 TTY：stdout 只输出一份完整 JSON 报告，摘要打到 stderr
// - stdout 是 TTY：输出摘要表格和失败明细，不输出 JSON
//
// 管道消费方（jq、脚本）永远拿到干净的单份 JSON。

func emitArchiveReport(rr domain.RunReport) {
	if !stdoutIsTTY() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rr)
		fmt.Fprintln(os.Stderr, archiveSummaryLine(rr.Summary))
		return
	}

	fmt.Println(renderTable(
		[]string{"analyzed", "placed", "replaced", "removed_src", "quarantined", "errors"},
		[][]string{{
			strconv.Itoa(rr.Summary.Analyzed),
			strconv.Itoa(rr.Summary.Placed),
			strconv.Itoa(rr.Summary.Replaced),
			strconv.Itoa(rr.Summary.RemovedSrc),
			strconv.Itoa(rr.Summary.Quarantined),
			strconv.Itoa(rr.Summary.Errors),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	for _, it := range rr.Items {
		if it.Status != domain.StatusError {
			continue
		}
		fmt.Printf("error  %s（%s：%s）\n", it.Src, it.ErrorCode, it.ErrorMsg)
	}
}

func emitSweepReport(rr domain.SweepReport) {
	if !stdoutIsTTY() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rr)
		fmt.Fprintln(os.Stderr, sweepSummaryLine(rr.Summary))
		return
	}

	fmt.Println(renderTable(
		[]string{"scanned", "matched", "groups", "dup_groups", "kept", "moved", "failed"},
		[][]string{{
			strconv.Itoa(rr.Summary.Scanned),
			strconv.Itoa(rr.Summary.Matched),
			strconv.Itoa(rr.Summary.Groups),
			strconv.Itoa(rr.Summary.DuplicateGroups),
			strconv.Itoa(rr.Summary.Kept),
			strconv.Itoa(rr.Summary.Moved),
			strconv.Itoa(rr.Summary.Failed),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	for _, m := range rr.Moves {
		if m.Status != domain.MoveStatusFailed {
			continue
		}
		fmt.Printf("failed %s（%s）\n", m.Src, m.ErrorMsg)
	}
}

func archiveSummaryLine(s domain.RunSummary) string {
	return fmt.Sprintf("analyzed=%d placed=%d replaced=%d removed_src=%d quarantined=%d errors=%d",
		s.Analyzed, s.Placed, s.Replaced, s.RemovedSrc, s.Quarantined, s.Errors)
}

func sweepSummaryLine(s domain.SweepSummary) string {
	return fmt.Sprintf("scanned=%d matched=%d dup_groups=%d kept=%d moved=%d failed=%d",
		s.Scanned, s.Matched, s.DuplicateGroups, s.Kept, s.Moved, s.Failed)
}
