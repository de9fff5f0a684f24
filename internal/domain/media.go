package domain

import "time"

// Kind 标识媒体类型。归档目录结构与文件名分隔符都依赖它。
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// DateSource 标识拍摄时间的来源：内嵌元数据，或文件修改时间兜底。
type DateSource string

const (
	DateSourceMetadata DateSource = "metadata"
	DateSourceFallback DateSource = "fallback"
)

// MediaItem 描述一次扫描得到的媒体文件（扫描阶段只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - Taken/Millis/Source 由归档引擎在解析元数据后赋值
// - Fingerprint 计算成功后只赋值一次；已归档文件不会被重新计算
type MediaItem struct {
	AbsPath string
	RelPath string
	Ext     string // 小写，含点，如 ".jpg"
	Kind    Kind
	Size    int64
	ModTime time.Time

	Taken  time.Time
	Millis int
	Source DateSource

	Fingerprint string
}
