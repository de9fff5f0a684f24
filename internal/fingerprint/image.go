package fingerprint

import (
	"fmt"
	"image"
	"os"

	// 注册解码器；感知哈希只需要解出 image.Image。
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/corona10/goimagehash"
)

// imageHash 计算图片的 64 位感知哈希（DCT），输出 16 位小写十六进制。
// 任何失败（打不开、解不出、算不出）都归为 Failure：近似内容去重没有
// 可靠兜底算法，失败文件必须离开主流程。
func imageHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Failure{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", &Failure{Path: path, Err: err}
	}

	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", &Failure{Path: path, Err: err}
	}
	return fmt.Sprintf("%016x", h.GetHash()), nil
}
