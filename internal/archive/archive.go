package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/John-Robertt/mediark/internal/domain"
	"github.com/John-Robertt/mediark/internal/fingerprint"
	"github.com/John-Robertt/mediark/internal/infra/fsx"
	"github.com/John-Robertt/mediark/internal/metadata"
	"github.com/John-Robertt/mediark/internal/scan"
)

// ErrorsDirName 是指纹计算失败条目的隔离目录（位于 dest root 下）。
const ErrorsDirName = "errors"

// 测试通过替换这两个钩子注入搬移/删除失败（与 fsx 包内钩子同款做法）。
var (
	renameFile = fsx.Rename
	removeFile = fsx.RemoveFile
)

// Options 是一次归档调用的输入。
type Options struct {
	SourceRoot string
	DestRoot   string

	// ExcludeDirs 追加扫描排除项（相对 source root）；dest root 自动排除。
	ExcludeDirs []string
}

// Execute 执行一次归档流水线，并返回对外稳定的 RunReport。
// 该函数尽量把错误“降级”为条目级失败（单条失败不影响其他条目）。
func Execute(ctx context.Context, opts Options, res metadata.Resolver, svc fingerprint.Service) domain.RunReport {
	return ExecuteWithObserver(ctx, opts, res, svc, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出进度（由上层决定是否启用）。
//
// 同一归档根内条目必须串行处理：这是正确性要求，不是简化。
// “规范路径是否被占用”的检查与随后的 rename 无法对并发写者原子化，
// 两个并发条目可能都观察到“空缺”并先后落位，破坏一份身份一份文件的不变量。
func ExecuteWithObserver(ctx context.Context, opts Options, res metadata.Resolver, svc fingerprint.Service, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(opts)
	}

	rr := domain.RunReport{
		SourceRoot: opts.SourceRoot,
		DestRoot:   opts.DestRoot,
		StartedAt:  started,
		Items:      make([]domain.ItemResult, 0, 128),
	}

	// 预检：只有源/目标根本身不可用才终止整个 run；其余失败都只作用于单个条目。
	if fi, err := os.Stat(opts.SourceRoot); err != nil {
		rr.Items = append(rr.Items, syntheticError(domain.ErrCodeIOFailed, fmt.Sprintf("无法访问 source root：%v", err)))
		return finalize(&rr)
	} else if !fi.IsDir() {
		rr.Items = append(rr.Items, syntheticError(domain.ErrCodeIOFailed, fmt.Sprintf("source root 不是目录：%q", opts.SourceRoot)))
		return finalize(&rr)
	}
	if fi, err := os.Stat(opts.DestRoot); err == nil && !fi.IsDir() {
		rr.Items = append(rr.Items, syntheticError(domain.ErrCodeIOFailed, fmt.Sprintf("dest root 不是目录：%q", opts.DestRoot)))
		return finalize(&rr)
	}
	// dest root 不存在时不在这里创建：空导入目录不应留下任何新目录。

	scanStarted := time.Now()
	exclude := append([]string(nil), opts.ExcludeDirs...)
	exclude = append(exclude, opts.DestRoot) // dest 嵌套在 source 内时必须排除
	items, err := scan.ScanMedia(opts.SourceRoot, exclude)
	if err != nil {
		rr.Items = append(rr.Items, syntheticError(domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err)))
		return finalize(&rr)
	}
	if obs != nil {
		obs.OnScanDone(len(items), time.Since(scanStarted))
	}

	for i := range items {
		if ctx.Err() != nil {
			break
		}
		oneStarted := time.Now()
		itRes := execOne(opts, items[i], res, svc)
		rr.Items = append(rr.Items, itRes)
		if obs != nil {
			obs.OnItemDone(i+1, len(items), itRes, time.Since(oneStarted))
		}
	}

	return finalize(&rr)
}

func finalize(rr *domain.RunReport) domain.RunReport {
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return *rr
}

func syntheticError(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Status:    domain.StatusError,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}

// execOne 把一个条目推进到终态。状态机：
// NEW -> {指纹失败 -> QUARANTINED} | {PLACED} | {冲突 -> REPLACED|REMOVED_SRC|CONFLICT_IO_ERROR}
func execOne(opts Options, item domain.MediaItem, res metadata.Resolver, svc fingerprint.Service) domain.ItemResult {
	it := domain.ItemResult{
		Src:  item.RelPath,
		Kind: string(item.Kind),
	}

	// 1) 解析拍摄时间；无数据/解析失败走 mtime 兜底并标记来源。
	taken, millis, ok, err := res.Resolve(item)
	if err != nil {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeIOFailed
		it.ErrorMsg = fmt.Sprintf("读取元数据失败：%v", err)
		return it
	}
	if ok {
		item.Taken, item.Millis, item.Source = taken, millis, domain.DateSourceMetadata
	} else {
		item.Taken = item.ModTime
		item.Millis = item.ModTime.Nanosecond() / int(time.Millisecond)
		item.Source = domain.DateSourceFallback
	}
	it.DateSource = string(item.Source)

	// 2) 指纹；失败条目原样进入 errors/，永远不进入冲突结算。
	fp, err := svc.Fingerprint(item)
	if err != nil {
		if fingerprint.IsFailure(err) {
			return quarantineError(opts, item, it, err)
		}
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeIOFailed
		it.ErrorMsg = err.Error()
		return it
	}
	item.Fingerprint = fp

	// 3) 目标目录（幂等创建）。
	relDir := domain.ArchiveDir(item)
	absDir := filepath.Join(opts.DestRoot, relDir)
	if err := fsx.EnsureDir(absDir); err != nil {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeIOFailed
		it.ErrorMsg = fmt.Sprintf("创建归档目录失败：%v", err)
		return it
	}

	// 4) 规范路径空缺则直接落位。
	name := domain.FormatName(item.Taken.Unix(), item.Millis, item.Fingerprint, item.Ext, item.Kind)
	dst := filepath.Join(absDir, name)
	it.Dst = filepath.Join(relDir, name)

	fi, err := os.Lstat(dst)
	if err != nil {
		if !os.IsNotExist(err) {
			it.Status = domain.StatusError
			it.ErrorCode = domain.ErrCodeIOFailed
			it.ErrorMsg = fmt.Sprintf("检查规范路径失败：%v", err)
			return it
		}
		if err := renameFile(item.AbsPath, dst); err != nil {
			it.Status = domain.StatusError
			it.ErrorCode = domain.ErrCodeMoveFailed
			it.ErrorMsg = err.Error()
			return it
		}
		it.Status = domain.StatusPlaced
		return it
	}
	if fi.IsDir() {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeIOFailed
		it.ErrorMsg = (&fsx.PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}).Error()
		return it
	}

	// 5) 规范路径被占用：进入冲突结算。
	resolveConflict(item, dst, fi.Size(), &it)
	return it
}

// quarantineError 把指纹失败的条目原样（保留原始文件名）移入 errors/。
// 该目录下的重名不做去重：同名覆盖属于可接受的罕见路径。
func quarantineError(opts Options, item domain.MediaItem, it domain.ItemResult, cause error) domain.ItemResult {
	errDir := filepath.Join(opts.DestRoot, ErrorsDirName)
	if err := fsx.EnsureDir(errDir); err != nil {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeIOFailed
		it.ErrorMsg = fmt.Sprintf("创建 errors 目录失败：%v", err)
		return it
	}

	base := filepath.Base(item.AbsPath)
	if err := renameFile(item.AbsPath, filepath.Join(errDir, base)); err != nil {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeMoveFailed
		it.ErrorMsg = err.Error()
		return it
	}

	it.Status = domain.StatusQuarantined
	it.ErrorCode = domain.ErrCodeFingerprintFailed
	it.ErrorMsg = cause.Error()
	it.Dst = filepath.Join(ErrorsDirName, base)
	return it
}
