package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/mediark/internal/domain"
)

// FileName 是配置文件的固定名字（在 cwd 下发现，或经 --config 指定）。
const FileName = "mediark.toml"

// FileConfig 对应 mediark.toml 的解析结构。所有字段可选：
// CLI 位置参数给全时可以完全不要配置文件。
type FileConfig struct {
	Archive ArchiveSection `toml:"archive"`
	Sweep   SweepSection   `toml:"sweep"`
}

type ArchiveSection struct {
	Source      string   `toml:"source"`
	Dest        string   `toml:"dest"`
	ExcludeDirs []string `toml:"exclude_dirs"`
}

type SweepSection struct {
	Root       string `toml:"root"`
	Quarantine string `toml:"quarantine"`
}

// ArchiveCLI 保存 archive 子命令的 CLI 输入（位置参数 + --config）。
type ArchiveCLI struct {
	Source     string
	Dest       string
	ConfigPath string
}

// SweepCLI 保存 sweep 子命令的 CLI 输入。
type SweepCLI struct {
	Root       string
	Quarantine string
	ConfigPath string
}

// EffectiveArchive 是合并并规范化后的最终配置（实现层直接消费，
// 不再做二次默认/优先级判断）。
type EffectiveArchive struct {
	Source      string
	Dest        string
	ExcludeDirs []string
}

type EffectiveSweep struct {
	Root       string
	Quarantine string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case domain.ErrCodeConfigNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case domain.ErrCodeConfigMissingPath:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return fmt.Sprintf("%s：缺少必填路径", e.Code)
	case domain.ErrCodeConfigInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadArchive 发现并读取配置，然后与 CLI 参数合并为最终归档配置。
//
// 发现规则（固定）：
// 1) --config 指定：必须可读，否则 config_not_found / config_invalid
// 2) 未指定：尝试 <cwd>/mediark.toml（可选，不存在不报错）
//
// 覆盖优先级（固定）：CLI 位置参数 > 配置文件。两边都没有的必填路径
// 报 config_missing_path。
func LoadArchive(cwd string, cli ArchiveCLI) (EffectiveArchive, error) {
	fc, err := discover(cwd, cli.ConfigPath)
	if err != nil {
		return EffectiveArchive{}, err
	}

	source := firstNonEmpty(cli.Source, fc.Archive.Source)
	if source == "" {
		return EffectiveArchive{}, &Error{Code: domain.ErrCodeConfigMissingPath, Err: fmt.Errorf("archive 需要 source（位置参数或 [archive].source）")}
	}
	dest := firstNonEmpty(cli.Dest, fc.Archive.Dest)
	if dest == "" {
		return EffectiveArchive{}, &Error{Code: domain.ErrCodeConfigMissingPath, Err: fmt.Errorf("archive 需要 dest（位置参数或 [archive].dest）")}
	}

	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveArchive{}, &Error{Code: domain.ErrCodeConfigInvalid, Path: cwd, Err: err}
	}

	return EffectiveArchive{
		Source:      absCleanFrom(cwdAbs, source),
		Dest:        absCleanFrom(cwdAbs, dest),
		ExcludeDirs: append([]string(nil), fc.Archive.ExcludeDirs...),
	}, nil
}

// LoadSweep 同 LoadArchive，针对 sweep 子命令。
func LoadSweep(cwd string, cli SweepCLI) (EffectiveSweep, error) {
	fc, err := discover(cwd, cli.ConfigPath)
	if err != nil {
		return EffectiveSweep{}, err
	}

	root := firstNonEmpty(cli.Root, fc.Sweep.Root)
	if root == "" {
		return EffectiveSweep{}, &Error{Code: domain.ErrCodeConfigMissingPath, Err: fmt.Errorf("sweep 需要 root（位置参数或 [sweep].root）")}
	}
	quarantine := firstNonEmpty(cli.Quarantine, fc.Sweep.Quarantine)
	if quarantine == "" {
		return EffectiveSweep{}, &Error{Code: domain.ErrCodeConfigMissingPath, Err: fmt.Errorf("sweep 需要 quarantine（位置参数或 [sweep].quarantine）")}
	}

	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveSweep{}, &Error{Code: domain.ErrCodeConfigInvalid, Path: cwd, Err: err}
	}

	return EffectiveSweep{
		Root:       absCleanFrom(cwdAbs, root),
		Quarantine: absCleanFrom(cwdAbs, quarantine),
	}, nil
}

func discover(cwd, explicit string) (FileConfig, error) {
	if strings.TrimSpace(explicit) != "" {
		fc, exists, err := readFileConfig(explicit)
		if err != nil {
			return FileConfig{}, &Error{Code: domain.ErrCodeConfigInvalid, Path: explicit, Err: err}
		}
		if !exists {
			return FileConfig{}, &Error{Code: domain.ErrCodeConfigNotFound, Path: explicit, Err: os.ErrNotExist}
		}
		return fc, nil
	}

	path := filepath.Join(cwd, FileName)
	fc, _, err := readFileConfig(path)
	if err != nil {
		return FileConfig{}, &Error{Code: domain.ErrCodeConfigInvalid, Path: path, Err: err}
	}
	// 不存在不算错误：CLI 位置参数可以独立成配。
	return fc, nil
}

// readFileConfig 读取并解析 TOML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
