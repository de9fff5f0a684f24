package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortSummaryAndUTC(t *testing.T) {
	r := RunReport{
		SourceRoot: "/in",
		DestRoot:   "/out",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Src: "b.jpg", Status: StatusRemovedSrc},
			{Src: "", Status: StatusError}, // 预检失败等合成条目
			{Src: "a.jpg", Status: StatusPlaced},
			{Src: "c.mp4", Status: StatusReplaced},
			{Src: "d.jpg", Status: StatusQuarantined},
		},
	}

	r.Finalize()

	// Src=="" 的条目必须排在最后。
	order := []string{r.Items[0].Src, r.Items[1].Src, r.Items[2].Src, r.Items[3].Src, r.Items[4].Src}
	want := []string{"a.jpg", "b.jpg", "c.mp4", "d.jpg", ""}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("items 排序不符合契约：%v", order)
		}
	}

	s := r.Summary
	if s.Analyzed != 5 || s.Placed != 1 || s.Replaced != 1 || s.RemovedSrc != 1 || s.Quarantined != 1 || s.Errors != 1 {
		t.Fatalf("summary 统计不正确：%+v", s)
	}
	// 守恒：analyzed == placed+replaced+removed_src+quarantined+errors。
	if s.Analyzed != s.Placed+s.Replaced+s.RemovedSrc+s.Quarantined+s.Errors {
		t.Fatalf("守恒被破坏：%+v", s)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestSweepReport_Finalize_RecountMoves(t *testing.T) {
	r := SweepReport{
		Root:           "/out",
		QuarantineRoot: "/dup",
		Summary:        SweepSummary{Scanned: 10, Matched: 8, Groups: 5, DuplicateGroups: 2, Kept: 2},
		Moves: []MoveResult{
			{Src: "b", Status: MoveStatusMoved},
			{Src: "a", Status: MoveStatusFailed, ErrorMsg: "rename 失败"},
			{Src: "c", Status: MoveStatusMoved},
		},
	}

	r.Finalize()

	if r.Moves[0].Src != "a" || r.Moves[1].Src != "b" || r.Moves[2].Src != "c" {
		t.Fatalf("moves 排序不符合契约：%+v", r.Moves)
	}
	if r.Summary.Moved != 2 || r.Summary.Failed != 1 {
		t.Fatalf("moves 统计不正确：%+v", r.Summary)
	}
}
