package main

import (
	"fmt"
	"io"
	"time"

	"github.com/John-Robertt/mediark/internal/archive"
	"github.com/John-Robertt/mediark/internal/domain"
	"github.com/John-Robertt/mediark/internal/sweep"
)

// archiveLineObserver 把归档进度按行打到终端（只在 TTY 下挂载）。
type archiveLineObserver struct {
	w io.Writer
}

func (o *archiveLineObserver) OnStart(opts archive.Options) {
	fmt.Fprintf(o.w, "归档：%s -> %s\n", opts.SourceRoot, opts.DestRoot)
}

func (o *archiveLineObserver) OnScanDone(total int, dur time.Duration) {
	fmt.Fprintf(o.w, "扫描完成：%d 个媒体文件（%s）\n", total, dur.Round(time.Millisecond))
}

func (o *archiveLineObserver) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	switch res.Status {
	case domain.StatusError:
		fmt.Fprintf(o.w, "[%d/%d] %-11s %s（%s：%s）\n", idx, total, res.Status, res.Src, res.ErrorCode, res.ErrorMsg)
	case domain.StatusQuarantined:
		fmt.Fprintf(o.w, "[%d/%d] %-11s %s -> %s（%s）\n", idx, total, res.Status, res.Src, res.Dst, res.ErrorCode)
	default:
		fmt.Fprintf(o.w, "[%d/%d] %-11s %s -> %s\n", idx, total, res.Status, res.Src, res.Dst)
	}
}

// sweepLineObserver 同上，针对清扫。
type sweepLineObserver struct {
	w io.Writer
}

func (o *sweepLineObserver) OnStart(opts sweep.Options) {
	fmt.Fprintf(o.w, "清扫：%s（隔离到 %s）\n", opts.Root, opts.QuarantineRoot)
}

func (o *sweepLineObserver) OnSnapshot(scanned, matched, groups int) {
	fmt.Fprintf(o.w, "快照完成：扫描 %d，规范命名 %d，分组 %d\n", scanned, matched, groups)
}

func (o *sweepLineObserver) OnMoveDone(res domain.MoveResult) {
	if res.Status == domain.MoveStatusFailed {
		fmt.Fprintf(o.w, "%-6s %s（%s）\n", res.Status, res.Src, res.ErrorMsg)
		return
	}
	fmt.Fprintf(o.w, "%-6s %s -> %s\n", res.Status, res.Src, res.Dst)
}
