package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/John-Robertt/mediark/internal/domain"
)

// resolveConflict 决定“规范路径已被占用”时的结局。
//
// 总序（按字节大小比较，仅图片有替换分支）：
//  1. 新进 > 在位：替换（更大视为更高保真）
//  2. 新进 < 在位：删除新进，保留在位
//  3. 新进 == 在位：删除新进（真重复）
//
// 视频：同一规范路径意味着同一指纹 + 同一时间戳，按精确重复处理，
// 无视大小一律保留在位、删除新进（既有行为，不做统一）。
//
// 契约：结算后规范路径上恰有一个文件；败者只能在确认胜者已在该路径
// 就位之后删除——绝不两边都删，绝不删掉唯一一份。中途任何 I/O 失败
// 都终止该条目且不删任何一边。
func resolveConflict(item domain.MediaItem, dst string, existingSize int64, it *domain.ItemResult) {
	if item.Kind == domain.KindImage && item.Size > existingSize {
		replaceExisting(item, dst, it)
		return
	}

	// 保留在位文件。删除新进之前必须确认在位文件仍然存在：
	// 它可能在检查与结算之间被外部挪走，此时删除新进会丢掉唯一一份。
	fi, err := os.Lstat(dst)
	if err != nil || !fi.Mode().IsRegular() {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeConflictIO
		it.ErrorMsg = fmt.Sprintf("在位文件不可确认，未删除任何一边：%v", err)
		return
	}
	if err := removeFile(item.AbsPath); err != nil {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeConflictIO
		it.ErrorMsg = fmt.Sprintf("删除新进文件失败，未删除任何一边：%v", err)
		return
	}
	it.Status = domain.StatusRemovedSrc
}

// replaceExisting 用新进文件替换在位文件，三步走：
// 在位文件先挪到旁侧名，新进落位，最后删除旁侧副本。
// 崩溃最多残留一个旁侧副本（良性状态：文法不匹配，后续 run/清扫都会跳过），
// 永远不会出现零副本。
func replaceExisting(item domain.MediaItem, dst string, it *domain.ItemResult) {
	dir := filepath.Dir(dst)
	aside := filepath.Join(dir, "."+filepath.Base(dst)+".old")

	if err := renameFile(dst, aside); err != nil {
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeConflictIO
		it.ErrorMsg = fmt.Sprintf("挪开在位文件失败，未删除任何一边：%v", err)
		return
	}

	if err := renameFile(item.AbsPath, dst); err != nil {
		// 回滚旁侧副本；失败则它留在旁侧名上，仍是一份完整副本。
		rollbackMsg := ""
		if rbErr := renameFile(aside, dst); rbErr != nil {
			rollbackMsg = fmt.Sprintf("；回滚失败，在位副本留在 %q", aside)
		}
		it.Status = domain.StatusError
		it.ErrorCode = domain.ErrCodeConflictIO
		it.ErrorMsg = fmt.Sprintf("新进文件落位失败，未删除任何一边：%v%s", err, rollbackMsg)
		return
	}

	// 胜者已在规范路径就位，旁侧副本现在才允许删除。
	it.Status = domain.StatusReplaced
	if err := removeFile(aside); err != nil {
		// 删除败者失败：胜者完好，残留副本是可容忍的良性状态，只记录不升级。
		it.ErrorMsg = fmt.Sprintf("败者副本未能删除（残留于 %q）：%v", aside, err)
	}
}
