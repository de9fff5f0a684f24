package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/mediark/internal/domain"
)

// imageExts 与 videoExts 决定哪些文件进入流水线；其余一律跳过。
var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".heic": {}, ".png": {}, ".bmp": {}, ".gif": {},
	".tiff": {}, ".tif": {}, ".webp": {}, ".avif": {}, ".jfif": {},
	".ppm": {}, ".pnm": {}, ".pbm": {}, ".pgm": {}, ".tga": {}, ".ico": {}, ".ras": {},
}

var videoExts = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".wmv": {}, ".flv": {},
	".webm": {}, ".mpeg": {}, ".mpg": {}, ".3gp": {}, ".mts": {}, ".m2ts": {},
	".ts": {}, ".m4v": {}, ".vob": {}, ".ogv": {}, ".rm": {}, ".rmvb": {},
}

// ScanMedia 扫描 root 下的媒体文件，并应用目录排除规则。
//
// 规则（硬约束）：
// - excludeDirs 均视为相对 root 的路径（若是绝对路径，则按绝对路径处理）；
//   调用方必须把嵌套在 root 内的归档/隔离目录加入排除列表
// - 扫描阶段只做 stat（DirEntry.Info），不读文件内容
func ScanMedia(root string, excludeDirs []string) ([]domain.MediaItem, error) {
	root = filepath.Clean(root)
	excluded := buildExcluded(root, excludeDirs)

	items := make([]domain.MediaItem, 0, 128)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		// 统一的排除判断：目录用 SkipDir，文件则直接跳过。
		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		kind, ok := kindOf(ext)
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		items = append(items, domain.MediaItem{
			AbsPath: path,
			RelPath: rel,
			Ext:     ext,
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 强制稳定输出，避免不同平台/文件系统行为差异带来的不确定性。
	sort.Slice(items, func(i, j int) bool { return items[i].RelPath < items[j].RelPath })
	return items, nil
}

func kindOf(ext string) (domain.Kind, bool) {
	if _, ok := imageExts[ext]; ok {
		return domain.KindImage, true
	}
	if _, ok := videoExts[ext]; ok {
		return domain.KindVideo, true
	}
	return "", false
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	// 排除列表排序后，isExcluded 的行为更可预测（且便于测试）。
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
