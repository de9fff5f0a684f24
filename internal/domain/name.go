package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CanonicalName 是归档文件名的结构化形式。
//
// 文法：<epochSeconds><millis:3位><sep><fingerprint><ext>
//
// 分隔符按媒体类型区分：图片 '-'，视频 '_'。这是既有归档树的对外契约，
// 两者不做统一；文件名只在本文件 format/parse，其余代码一律操作结构化字段。
type CanonicalName struct {
	Unix        int64
	Millis      int
	Fingerprint string
	Ext         string // 含点，可为空
	Sep         byte
}

var fingerprintRE = regexp.MustCompile(`^[0-9a-f]+$`)

// Separator 返回该媒体类型的文件名分隔符。
func Separator(kind Kind) byte {
	if kind == KindVideo {
		return '_'
	}
	return '-'
}

// FormatName 生成规范文件名。Millis 固定 3 位补零。
func FormatName(unix int64, millis int, fingerprint, ext string, kind Kind) string {
	return fmt.Sprintf("%d%03d%c%s%s", unix, millis, Separator(kind), fingerprint, ext)
}

// String 还原出规范文件名（与 FormatName 一致）。
func (n CanonicalName) String() string {
	return fmt.Sprintf("%d%03d%c%s%s", n.Unix, n.Millis, n.Sep, n.Fingerprint, n.Ext)
}

// TimestampToken 返回文件名中的时间戳片段（定宽十进制；同宽下字典序即数值序）。
func (n CanonicalName) TimestampToken() string {
	return fmt.Sprintf("%d%03d", n.Unix, n.Millis)
}

// ParseCanonicalName 解析一个文件名；不符合文法返回 ok=false（调用方静默跳过）。
//
// 解析顺序与既有归档一致：先找 '_'（视频），找不到再找 '-'（图片）。
// format/parse 对 (Unix, Millis, Fingerprint) 是无损往返。
func ParseCanonicalName(filename string) (CanonicalName, bool) {
	ext := extOf(filename)
	stem := strings.TrimSuffix(filename, ext)

	var sep byte
	idx := strings.IndexByte(stem, '_')
	if idx >= 0 {
		sep = '_'
	} else {
		idx = strings.IndexByte(stem, '-')
		if idx < 0 {
			return CanonicalName{}, false
		}
		sep = '-'
	}

	token := stem[:idx]
	fp := stem[idx+1:]

	// token 至少要有 1 位秒 + 3 位毫秒。
	if len(token) < 4 || !allDigits(token) {
		return CanonicalName{}, false
	}
	if !fingerprintRE.MatchString(fp) {
		return CanonicalName{}, false
	}

	unix, err := strconv.ParseInt(token[:len(token)-3], 10, 64)
	if err != nil {
		return CanonicalName{}, false
	}
	millis, err := strconv.Atoi(token[len(token)-3:])
	if err != nil {
		return CanonicalName{}, false
	}

	return CanonicalName{
		Unix:        unix,
		Millis:      millis,
		Fingerprint: fp,
		Ext:         ext,
		Sep:         sep,
	}, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// extOf 取最后一个 '.' 开始的扩展名；隐藏文件（".foo"）视为无扩展名。
func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i:]
}
