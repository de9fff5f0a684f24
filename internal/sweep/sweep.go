package sweep

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/John-Robertt/mediark/internal/domain"
	"github.com/John-Robertt/mediark/internal/infra/fsx"
)

// Options 是一次去重清扫的输入。清扫独立于归档流水线运行、可重复执行。
type Options struct {
	Root           string
	QuarantineRoot string
}

// Observer 把清扫进度从核心流程解耦出来（同 archive.Observer 的约束）。
type Observer interface {
	OnStart(opts Options)
	OnSnapshot(scanned, matched, groups int)
	OnMoveDone(res domain.MoveResult)
}

// groupKey 是去重分组键。刻意不含扩展名/媒体类型/目录：
// 跨类型的指纹+大小碰撞会被并入同一组（既有行为，标记但不修正）。
type groupKey struct {
	fingerprint string
	size        int64
}

type member struct {
	absPath string
	relPath string
	name    string
	token   string
}

// Execute 清扫一棵归档树：解析规范文件名，按（指纹, 大小）分组，
// 每组保留时间戳片段最小的成员，其余搬入 quarantine/<指纹>/<原文件名>。
//
// 性质：
// - 先做完整目录快照再开始搬移；清扫期间新增的文件留给下一轮
// - 对自身输出幂等：再跑一遍是 no-op（每组只剩一个成员）
// - 单个搬移失败只计数并上报，不终止清扫
func Execute(ctx context.Context, opts Options) domain.SweepReport {
	return ExecuteWithObserver(ctx, opts, nil)
}

func ExecuteWithObserver(ctx context.Context, opts Options, obs Observer) domain.SweepReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(opts)
	}

	rr := domain.SweepReport{
		Root:           opts.Root,
		QuarantineRoot: opts.QuarantineRoot,
		StartedAt:      started,
	}

	groups, scanned, matched, err := snapshot(opts)
	if err != nil {
		// 预检级失败：根不可访问，整个清扫终止（从未动过任何文件）。
		rr.Moves = append(rr.Moves, domain.MoveResult{
			Status:   domain.MoveStatusFailed,
			ErrorMsg: fmt.Sprintf("扫描失败：%v", err),
		})
		return finalize(&rr)
	}

	rr.Summary.Scanned = scanned
	rr.Summary.Matched = matched
	rr.Summary.Groups = len(groups)

	if obs != nil {
		obs.OnSnapshot(scanned, matched, len(groups))
	}

	// 分组键排序后迭代，保证报告与搬移顺序确定。
	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].fingerprint != keys[j].fingerprint {
			return keys[i].fingerprint < keys[j].fingerprint
		}
		return keys[i].size < keys[j].size
	})

	for _, k := range keys {
		if ctx.Err() != nil {
			break
		}
		members := groups[k]
		if len(members) <= 1 {
			continue
		}
		rr.Summary.DuplicateGroups++

		// 时间戳片段按定宽十进制字符串排序（同宽下字典序即数值序）；
		// 最小者保留，其余隔离。
		sort.Slice(members, func(i, j int) bool {
			if members[i].token != members[j].token {
				return members[i].token < members[j].token
			}
			return members[i].relPath < members[j].relPath
		})
		rr.Summary.Kept++

		quarDir := filepath.Join(opts.QuarantineRoot, k.fingerprint)
		for _, m := range members[1:] {
			mv := domain.MoveResult{
				Fingerprint: k.fingerprint,
				Size:        k.size,
				Src:         m.relPath,
				Dst:         filepath.Join(k.fingerprint, m.name),
			}
			if err := relocate(quarDir, m); err != nil {
				mv.Status = domain.MoveStatusFailed
				mv.ErrorMsg = err.Error()
			} else {
				mv.Status = domain.MoveStatusMoved
			}
			rr.Moves = append(rr.Moves, mv)
			if obs != nil {
				obs.OnMoveDone(mv)
			}
		}
	}

	return finalize(&rr)
}

// relocate 把一个败者搬到 quarantine/<指纹>/<原文件名>。
// 不同目录下的两个败者可能同名：后到者覆盖先到者，隔离区内不做重名去重
// （既有清扫的行为，保持不变）。
func relocate(quarDir string, m member) error {
	if err := fsx.EnsureDir(quarDir); err != nil {
		return err
	}
	return fsx.Rename(m.absPath, filepath.Join(quarDir, m.name))
}

// snapshot 走一遍归档树并解析规范文件名；不符合文法的条目静默跳过。
// 隔离根嵌套在归档根内时跳过其子树，否则清扫自己的输出就不再幂等。
func snapshot(opts Options) (map[groupKey][]member, int, int, error) {
	root := filepath.Clean(opts.Root)
	quarantine := filepath.Clean(opts.QuarantineRoot)

	groups := make(map[groupKey][]member, 128)
	scanned := 0
	matched := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isUnder(path, quarantine) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		scanned++

		cn, ok := domain.ParseCanonicalName(d.Name())
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

		matched++
		key := groupKey{fingerprint: cn.Fingerprint, size: info.Size()}
		groups[key] = append(groups[key], member{
			absPath: path,
			relPath: rel,
			name:    d.Name(),
			token:   cn.TimestampToken(),
		})
		return nil
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return groups, scanned, matched, nil
}

func finalize(rr *domain.SweepReport) domain.SweepReport {
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return *rr
}

func isUnder(path, base string) bool {
	path = filepath.Clean(path)
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
