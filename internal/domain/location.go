package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// ArchiveDir 计算某个条目在归档树内的相对目录。
//
// 结构（既有归档的对外契约，保持不对称）：
// - 图片：date|no-date/<年>/<月:2位>/<日:2位>
// - 视频：video-date|video-no-date/<年>/<月:2位>（没有日一级）
func ArchiveDir(item MediaItem) string {
	year, month, day := item.Taken.Date()

	if item.Kind == KindVideo {
		branch := "video-date"
		if item.Source == DateSourceFallback {
			branch = "video-no-date"
		}
		return filepath.Join(branch, strconv.Itoa(year), fmt.Sprintf("%02d", int(month)))
	}

	branch := "date"
	if item.Source == DateSourceFallback {
		branch = "no-date"
	}
	return filepath.Join(branch, strconv.Itoa(year), fmt.Sprintf("%02d", int(month)), fmt.Sprintf("%02d", day))
}
