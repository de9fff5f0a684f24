package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/mediark/internal/domain"
	"github.com/John-Robertt/mediark/internal/infra/fsx"
)

// stateDirName 是归档根下存放 run 报告的目录。
// 其中的文件名不符合规范文法，清扫会自然跳过它们。
const stateDirName = ".mediark"

// acquireRunLock 对一个归档根取跨进程互斥锁。
//
// 锁文件放在系统临时目录而不是根目录下：空 run 不允许在归档树内
// 留下任何目录或文件。同一根（clean 后的绝对路径）映射到同一锁文件。
func acquireRunLock(root string) (*flock.Flock, error) {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	path := filepath.Join(os.TempDir(), fmt.Sprintf("mediark-%x.lock", sum[:8]))

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("获取 run 锁失败（%s）：%w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("另一个 mediark 正在操作 %s，本次退出", root)
	}
	return lock, nil
}

// pickProgressWriter 选择进度输出目标。
// 进度只在人看得见的终端上打印：优先 stderr（不与 JSON 争 stdout），
// 其次 stdout（此时 stdout 是 TTY，本来就不会输出 JSON）。
func pickProgressWriter() (io.Writer, bool) {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return os.Stderr, true
	}
	if stdoutIsTTY() {
		return os.Stdout, true
	}
	return nil, false
}

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func writeArchiveReportFile(destRoot string, rr domain.RunReport) error {
	return writeReportFile(destRoot, "report.json", rr)
}

func writeSweepReportFile(root string, rr domain.SweepReport) error {
	return writeReportFile(root, "sweep-report.json", rr)
}

// writeReportFile 把报告原子落盘到 <root>/.mediark/<name>，
// 每次 run 整体替换（报告是 run 级快照，不做追加）。
func writeReportFile(root, name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Join(root, stateDirName)
	if err := fsx.EnsureDir(dir); err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(dir, name, b)
}
