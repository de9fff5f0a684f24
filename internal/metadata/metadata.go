package metadata

import (
	"time"

	"github.com/John-Robertt/mediark/internal/domain"
)

// Resolver 解析一个媒体文件的拍摄时间（含毫秒）。
//
// 契约：
// - ok=false 表示“没有数据”或内嵌数据无法解析，不是错误（调用方走 mtime 兜底）
// - 只有打开/访问文件本身失败才返回 err
type Resolver interface {
	Resolve(item domain.MediaItem) (t time.Time, millis int, ok bool, err error)
}

// EmbeddedResolver 从文件内嵌元数据解析拍摄时间：
// - 图片：EXIF DateTimeOriginal / DateTimeDigitized，亚秒字段 best-effort
// - 视频：QuickTime/MP4 mvhd 的 creation_time（毫秒恒为 0）
type EmbeddedResolver struct{}

func (EmbeddedResolver) Resolve(item domain.MediaItem) (time.Time, int, bool, error) {
	switch item.Kind {
	case domain.KindImage:
		return resolveEXIF(item.AbsPath)
	case domain.KindVideo:
		return resolveQuickTime(item.AbsPath)
	default:
		return time.Time{}, 0, false, nil
	}
}
