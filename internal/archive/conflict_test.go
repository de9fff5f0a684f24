package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/mediark/internal/domain"
)

func swapRename(t *testing.T, fn func(src, dst string) error) {
	t.Helper()
	old := renameFile
	renameFile = fn
	t.Cleanup(func() { renameFile = old })
}

func swapRemove(t *testing.T, fn func(path string) error) {
	t.Helper()
	old := removeFile
	removeFile = fn
	t.Cleanup(func() { removeFile = old })
}

// conflictFixture 造一个“规范路径已被占用”的现场：
// 在位 10 字节，新进按 incoming 给定。返回两边的绝对路径。
func conflictFixture(t *testing.T, incoming []byte) (srcPath, dstPath string) {
	t.Helper()
	dir := t.TempDir()
	dstPath = filepath.Join(dir, "canon", "1700000000000-aabbccdd00112233.jpg")
	writeFile(t, dstPath, []byte("0123456789"))
	srcPath = filepath.Join(dir, "in", "incoming.jpg")
	writeFile(t, srcPath, incoming)
	return srcPath, dstPath
}

func mustContent(t *testing.T, path, want string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取 %q 失败：%v", path, err)
	}
	if string(b) != want {
		t.Fatalf("%q 内容不一致：%q，期望 %q", path, string(b), want)
	}
}

func TestResolveConflict_AsideRenameFailureKeepsBoth(t *testing.T) {
	// 替换分支第一步（在位挪到旁侧）失败：两边都不许动。
	srcPath, dstPath := conflictFixture(t, []byte("01234567890123456789"))
	swapRename(t, func(src, dst string) error { return os.ErrPermission })

	item := domain.MediaItem{AbsPath: srcPath, Kind: domain.KindImage, Size: 20}
	var it domain.ItemResult
	resolveConflict(item, dstPath, 10, &it)

	if it.Status != domain.StatusError || it.ErrorCode != domain.ErrCodeConflictIO {
		t.Fatalf("期望 conflict_io_failed：%+v", it)
	}
	mustContent(t, dstPath, "0123456789")
	mustContent(t, srcPath, "01234567890123456789")
}

func TestResolveConflict_PlacementFailureRollsBack(t *testing.T) {
	// 在位已挪到旁侧、新进落位失败：旁侧副本必须回滚到规范路径。
	srcPath, dstPath := conflictFixture(t, []byte("01234567890123456789"))
	swapRename(t, func(src, dst string) error {
		if src == srcPath {
			return os.ErrPermission
		}
		return os.Rename(src, dst)
	})

	item := domain.MediaItem{AbsPath: srcPath, Kind: domain.KindImage, Size: 20}
	var it domain.ItemResult
	resolveConflict(item, dstPath, 10, &it)

	if it.Status != domain.StatusError || it.ErrorCode != domain.ErrCodeConflictIO {
		t.Fatalf("期望 conflict_io_failed：%+v", it)
	}
	mustContent(t, dstPath, "0123456789")
	mustContent(t, srcPath, "01234567890123456789")

	// 回滚成功后旁侧名上不得有残留。
	aside := filepath.Join(filepath.Dir(dstPath), "."+filepath.Base(dstPath)+".old")
	if _, err := os.Lstat(aside); !os.IsNotExist(err) {
		t.Fatalf("旁侧副本应已回滚：%v", err)
	}
}

func TestResolveConflict_RollbackFailureLeavesAsideCopy(t *testing.T) {
	// 落位和回滚都失败：在位副本留在旁侧名上，仍是一份完整副本，绝不为零。
	srcPath, dstPath := conflictFixture(t, []byte("01234567890123456789"))
	swapRename(t, func(src, dst string) error {
		if src == dstPath {
			return os.Rename(src, dst) // 第一步：在位挪到旁侧
		}
		return os.ErrPermission // 落位与回滚都失败
	})

	item := domain.MediaItem{AbsPath: srcPath, Kind: domain.KindImage, Size: 20}
	var it domain.ItemResult
	resolveConflict(item, dstPath, 10, &it)

	if it.Status != domain.StatusError || it.ErrorCode != domain.ErrCodeConflictIO {
		t.Fatalf("期望 conflict_io_failed：%+v", it)
	}
	aside := filepath.Join(filepath.Dir(dstPath), "."+filepath.Base(dstPath)+".old")
	mustContent(t, aside, "0123456789")
	mustContent(t, srcPath, "01234567890123456789")
	if !strings.Contains(it.ErrorMsg, aside) {
		t.Fatalf("错误信息应指出旁侧副本位置：%q", it.ErrorMsg)
	}
}

func TestResolveConflict_ExistingVanishedKeepsIncoming(t *testing.T) {
	// 在位文件在检查与结算之间被外部挪走：删除新进会丢掉唯一一份，必须中止。
	srcPath, dstPath := conflictFixture(t, []byte("0123"))
	if err := os.Remove(dstPath); err != nil {
		t.Fatalf("准备现场失败：%v", err)
	}

	item := domain.MediaItem{AbsPath: srcPath, Kind: domain.KindImage, Size: 4}
	var it domain.ItemResult
	resolveConflict(item, dstPath, 10, &it)

	if it.Status != domain.StatusError || it.ErrorCode != domain.ErrCodeConflictIO {
		t.Fatalf("期望 conflict_io_failed：%+v", it)
	}
	mustContent(t, srcPath, "0123")
}

func TestResolveConflict_RemoveIncomingFailureKeepsBoth(t *testing.T) {
	srcPath, dstPath := conflictFixture(t, []byte("0123"))
	swapRemove(t, func(path string) error { return os.ErrPermission })

	item := domain.MediaItem{AbsPath: srcPath, Kind: domain.KindImage, Size: 4}
	var it domain.ItemResult
	resolveConflict(item, dstPath, 10, &it)

	if it.Status != domain.StatusError || it.ErrorCode != domain.ErrCodeConflictIO {
		t.Fatalf("期望 conflict_io_failed：%+v", it)
	}
	mustContent(t, dstPath, "0123456789")
	mustContent(t, srcPath, "0123")
}

func TestResolveConflict_AsideDeleteFailureStaysReplaced(t *testing.T) {
	// 胜者已就位后删除旁侧副本失败：残留是良性状态，状态保持 replaced。
	srcPath, dstPath := conflictFixture(t, []byte("01234567890123456789"))
	swapRemove(t, func(path string) error { return os.ErrPermission })

	item := domain.MediaItem{AbsPath: srcPath, Kind: domain.KindImage, Size: 20}
	var it domain.ItemResult
	resolveConflict(item, dstPath, 10, &it)

	if it.Status != domain.StatusReplaced {
		t.Fatalf("期望 replaced：%+v", it)
	}
	if it.ErrorMsg == "" {
		t.Fatalf("残留旁侧副本应被记录在 ErrorMsg 中")
	}
	mustContent(t, dstPath, "01234567890123456789")
	aside := filepath.Join(filepath.Dir(dstPath), "."+filepath.Base(dstPath)+".old")
	mustContent(t, aside, "0123456789")
}
