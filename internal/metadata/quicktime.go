package metadata

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"time"
)

// QuickTime/MP4 的时间基准是 1904-01-01 UTC。
var quickTimeEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// creation_time 超过 time.Duration 可表示的秒数（约 292 年）即字段损坏，
// 直接换算会溢出成一个看似合法的日期。
const maxMvhdSeconds = uint64(math.MaxInt64 / int64(time.Second))

// resolveQuickTime 在容器顶层找 moov，再在其中找 mvhd，读取 creation_time。
//
// 失败策略：文件打不开才是错误；atom 结构残缺、缺少 moov/mvhd、
// creation_time 为 0 都按“无数据”处理（调用方走 mtime 兜底）。
func resolveQuickTime(path string) (time.Time, int, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, 0, false, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, 0, false, err
	}

	t, ok := findMvhd(f, 0, fi.Size())
	if !ok {
		return time.Time{}, 0, false, nil
	}
	return t, 0, true, nil
}

// findMvhd 线性遍历 [offset, end) 内的兄弟 atom；遇到 moov 递归进入其子层。
func findMvhd(r io.ReaderAt, offset, end int64) (time.Time, bool) {
	for offset+8 <= end {
		var hdr [8]byte
		if _, err := r.ReadAt(hdr[:], offset); err != nil {
			return time.Time{}, false
		}

		size := int64(binary.BigEndian.Uint32(hdr[:4]))
		typ := string(hdr[4:8])
		headerLen := int64(8)

		switch size {
		case 0:
			// size==0：atom 延伸到文件末尾。
			size = end - offset
		case 1:
			// 64 位扩展长度。
			var ext [8]byte
			if _, err := r.ReadAt(ext[:], offset+8); err != nil {
				return time.Time{}, false
			}
			size = int64(binary.BigEndian.Uint64(ext[:]))
			headerLen = 16
		}
		if size < headerLen || offset+size > end {
			return time.Time{}, false
		}

		switch typ {
		case "moov":
			if t, ok := findMvhd(r, offset+headerLen, offset+size); ok {
				return t, true
			}
		case "mvhd":
			return parseMvhd(r, offset+headerLen, size-headerLen)
		}

		offset += size
	}
	return time.Time{}, false
}

func parseMvhd(r io.ReaderAt, offset, length int64) (time.Time, bool) {
	// version(1) + flags(3) + creation_time(4 或 8)。
	var verFlags [4]byte
	if length < 4 {
		return time.Time{}, false
	}
	if _, err := r.ReadAt(verFlags[:], offset); err != nil {
		return time.Time{}, false
	}

	var secs uint64
	switch verFlags[0] {
	case 0:
		if length < 8 {
			return time.Time{}, false
		}
		var buf [4]byte
		if _, err := r.ReadAt(buf[:], offset+4); err != nil {
			return time.Time{}, false
		}
		secs = uint64(binary.BigEndian.Uint32(buf[:]))
	case 1:
		if length < 12 {
			return time.Time{}, false
		}
		var buf [8]byte
		if _, err := r.ReadAt(buf[:], offset+4); err != nil {
			return time.Time{}, false
		}
		secs = binary.BigEndian.Uint64(buf[:])
	default:
		return time.Time{}, false
	}

	if secs == 0 || secs > maxMvhdSeconds {
		// 未写入拍摄时间的容器普遍把该字段置 0；天文数字按无数据处理。
		return time.Time{}, false
	}
	return quickTimeEpoch.Add(time.Duration(secs) * time.Second), true
}
