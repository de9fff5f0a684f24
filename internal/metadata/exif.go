package metadata

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIF 日期没有时区字段；与既有归档一致，按本地时区解释。
const exifTimeLayout = "2006:01:02 15:04:05"

var exifDateTags = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
}

var exifSubSecTags = []exif.FieldName{
	exif.SubSecTimeOriginal,
	exif.SubSecTimeDigitized,
	exif.SubSecTime,
}

func resolveEXIF(path string) (time.Time, int, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, 0, false, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// 没有 EXIF 或结构损坏：按“无数据”处理，走兜底。
		return time.Time{}, 0, false, nil
	}

	for _, tag := range exifDateTags {
		field, err := x.Get(tag)
		if err != nil {
			continue
		}
		s, err := field.StringVal()
		if err != nil {
			continue
		}
		t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(s), time.Local)
		if err != nil {
			continue
		}
		return t, subSecMillis(x), true, nil
	}
	return time.Time{}, 0, false, nil
}

// subSecMillis 把 EXIF 亚秒字段换算为毫秒：右补零到 3 位后截断（"7" -> 700ms）。
// 任何异常都退化为 0，不影响日期本身。
func subSecMillis(x *exif.Exif) int {
	for _, tag := range exifSubSecTags {
		field, err := x.Get(tag)
		if err != nil {
			continue
		}
		s, err := field.StringVal()
		if err != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		s = (s + "000")[:3]
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			continue
		}
		return n
	}
	return 0
}
