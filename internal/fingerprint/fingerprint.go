package fingerprint

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/mediark/internal/domain"
)

// Failure 表示指纹计算失败。归档引擎据此把文件原样送入 errors/ 隔离区，
// 该条目不会进入冲突结算阶段。
type Failure struct {
	Path string
	Err  error
}

func (e *Failure) Error() string {
	return fmt.Sprintf("指纹计算失败：%q：%v", e.Path, e.Err)
}

func (e *Failure) Unwrap() error { return e.Err }

// IsFailure 判断 err 是否为指纹计算失败。
func IsFailure(err error) bool {
	var e *Failure
	return errors.As(err, &e)
}

// Service 为一个媒体文件计算内容指纹。
//
// 图片与视频使用不同算法、不同长度的 token，但共享同一文件名文法：
// - 图片：64 位感知哈希，16 位小写十六进制
// - 视频：采样摘要 SHA-256，64 位小写十六进制
type Service interface {
	Fingerprint(item domain.MediaItem) (string, error)
}

// ContentService 是 Service 的默认实现，按媒体类型分派算法。
type ContentService struct{}

func (ContentService) Fingerprint(item domain.MediaItem) (string, error) {
	switch item.Kind {
	case domain.KindImage:
		return imageHash(item.AbsPath)
	case domain.KindVideo:
		return sampledDigest(item.AbsPath)
	default:
		return "", &Failure{Path: item.AbsPath, Err: fmt.Errorf("未知媒体类型 %q", item.Kind)}
	}
}
