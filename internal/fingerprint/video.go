package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"os"
)

// sampleBytes 是采样摘要读取的最大字节数。
const sampleBytes = 1024

// sampledDigest 计算视频的采样摘要：
//
//	sha256(<大小:8字节大端> || <最多 1024 个等距采样字节>)
//
// 文件 ≤1024 字节时取全文；空文件定义为 sha256("")（不含大小前缀，
// 与既有归档写出的指纹保持一致）。
func sampledDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Failure{Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", &Failure{Path: path, Err: err}
	}
	size := fi.Size()

	if size == 0 {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}

	h := sha256.New()
	var szb [8]byte
	binary.BigEndian.PutUint64(szb[:], uint64(size))
	h.Write(szb[:])

	if size <= sampleBytes {
		if _, err := io.Copy(h, f); err != nil {
			return "", &Failure{Path: path, Err: err}
		}
	} else {
		// 等距采样 1024 个单字节：位置 i*(size-1)/1023，首尾都覆盖。
		b := make([]byte, 1)
		for i := int64(0); i < sampleBytes; i++ {
			pos := i * (size - 1) / (sampleBytes - 1)
			if _, err := f.ReadAt(b, pos); err != nil {
				return "", &Failure{Path: path, Err: err}
			}
			h.Write(b)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
