package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/mediark/internal/domain"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("写文件失败：%v", err)
	}
}

func TestExecute_KeepSmallestToken(t *testing.T) {
	// 场景：三个文件共享（指纹, 大小），时间戳 100/200/150 ->
	// 保留 100，其余两个进入 quarantine/<指纹>/。
	root := t.TempDir()
	quarantine := t.TempDir()
	content := []byte("same-size")

	keep := filepath.Join(root, "date", "2000", "01", "01", "1000000000100-aabbccdd00112233.jpg")
	m200 := filepath.Join(root, "date", "2000", "01", "02", "1000000000200-aabbccdd00112233.jpg")
	m150 := filepath.Join(root, "date", "2000", "01", "03", "1000000000150-aabbccdd00112233.jpg")
	writeFile(t, keep, content)
	writeFile(t, m200, content)
	writeFile(t, m150, content)

	rr := Execute(context.Background(), Options{Root: root, QuarantineRoot: quarantine})

	s := rr.Summary
	if s.Matched != 3 || s.Groups != 1 || s.DuplicateGroups != 1 || s.Kept != 1 || s.Moved != 2 || s.Failed != 0 {
		t.Fatalf("统计不符合预期：%+v", s)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("时间戳最小者应保留在原位：%v", err)
	}
	for _, name := range []string{"1000000000200-aabbccdd00112233.jpg", "1000000000150-aabbccdd00112233.jpg"} {
		if _, err := os.Stat(filepath.Join(quarantine, "aabbccdd00112233", name)); err != nil {
			t.Fatalf("%q 应已进入隔离区：%v", name, err)
		}
	}
}

func TestExecute_Idempotent(t *testing.T) {
	root := t.TempDir()
	quarantine := filepath.Join(root, "quarantine") // 隔离区嵌套在归档根内
	content := []byte("payload")

	writeFile(t, filepath.Join(root, "1000000000100-deadbeef.mp4"), content)
	writeFile(t, filepath.Join(root, "1000000000200_deadbeef.mp4"), content)

	first := Execute(context.Background(), Options{Root: root, QuarantineRoot: quarantine})
	if first.Summary.Moved != 1 {
		t.Fatalf("第一次清扫应搬移 1 个：%+v", first.Summary)
	}

	second := Execute(context.Background(), Options{Root: root, QuarantineRoot: quarantine})
	if second.Summary.Moved != 0 || second.Summary.Failed != 0 || second.Summary.DuplicateGroups != 0 {
		t.Fatalf("对自身输出必须幂等：%+v", second.Summary)
	}
}

func TestExecute_SizeSplitsGroups(t *testing.T) {
	// 同指纹不同大小不是重复。
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1000000000100-aabbccdd.jpg"), []byte("aa"))
	writeFile(t, filepath.Join(root, "1000000000200-aabbccdd.jpg"), []byte("aaaa"))

	rr := Execute(context.Background(), Options{Root: root, QuarantineRoot: t.TempDir()})
	if rr.Summary.Groups != 2 || rr.Summary.Moved != 0 {
		t.Fatalf("不同大小不应并组：%+v", rr.Summary)
	}
}

func TestExecute_CrossKindCollisionMerges(t *testing.T) {
	// 分组刻意忽略扩展名/类型：跨类型的指纹+大小碰撞并入同一组（既有行为）。
	root := t.TempDir()
	content := []byte("collide")
	writeFile(t, filepath.Join(root, "1000000000100-aabbccdd.jpg"), content)
	writeFile(t, filepath.Join(root, "1000000000200_aabbccdd.mp4"), content)

	rr := Execute(context.Background(), Options{Root: root, QuarantineRoot: t.TempDir()})
	if rr.Summary.Groups != 1 || rr.Summary.Moved != 1 {
		t.Fatalf("跨类型碰撞应并组：%+v", rr.Summary)
	}
}

func TestExecute_NonMatchingSilentlySkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "IMG_0001.jpg"), []byte("x"))
	writeFile(t, filepath.Join(root, "readme.txt"), []byte("x"))
	writeFile(t, filepath.Join(root, "1000000000100-aabbccdd.jpg"), []byte("y"))

	rr := Execute(context.Background(), Options{Root: root, QuarantineRoot: t.TempDir()})
	s := rr.Summary
	if s.Scanned != 3 || s.Matched != 1 || s.Failed != 0 {
		t.Fatalf("不符合文法的条目应静默跳过：%+v", s)
	}
}

func TestExecute_RelocationFailureCountedNotFatal(t *testing.T) {
	root := t.TempDir()
	quarantine := t.TempDir()
	content := []byte("same")

	// 组 a：隔离目标被一个同名目录占住 -> rename 失败。
	writeFile(t, filepath.Join(root, "1000000000100-aaaaaaaa.jpg"), content)
	writeFile(t, filepath.Join(root, "1000000000200-aaaaaaaa.jpg"), content)
	if err := os.MkdirAll(filepath.Join(quarantine, "aaaaaaaa", "1000000000200-aaaaaaaa.jpg", "block"), 0o755); err != nil {
		t.Fatalf("准备失败目标失败：%v", err)
	}

	// 组 b：正常搬移，证明清扫没有被组 a 的失败终止。
	writeFile(t, filepath.Join(root, "1000000000100-bbbbbbbb.jpg"), content)
	writeFile(t, filepath.Join(root, "1000000000200-bbbbbbbb.jpg"), content)

	rr := Execute(context.Background(), Options{Root: root, QuarantineRoot: quarantine})
	s := rr.Summary
	if s.Failed != 1 || s.Moved != 1 {
		t.Fatalf("失败应计数且不终止清扫：%+v", s)
	}

	// 失败成员必须原地保留（源与目标至少存其一）。
	if _, err := os.Stat(filepath.Join(root, "1000000000200-aaaaaaaa.jpg")); err != nil {
		t.Fatalf("搬移失败的成员应留在原位：%v", err)
	}
}

func TestExecute_QuarantineNameCollisionOverwrites(t *testing.T) {
	// 不同目录下的两个败者同名：隔离目标相同，后到者覆盖先到者。
	root := t.TempDir()
	quarantine := t.TempDir()
	content := []byte("same")

	writeFile(t, filepath.Join(root, "a", "1000000000100-dddddddd.jpg"), content)
	writeFile(t, filepath.Join(root, "b", "1000000000200-dddddddd.jpg"), content)
	writeFile(t, filepath.Join(root, "c", "1000000000200-dddddddd.jpg"), content)

	rr := Execute(context.Background(), Options{Root: root, QuarantineRoot: quarantine})
	if rr.Summary.Moved != 2 || rr.Summary.Failed != 0 {
		t.Fatalf("两个败者都应计为搬移成功：%+v", rr.Summary)
	}

	entries, err := os.ReadDir(filepath.Join(quarantine, "dddddddd"))
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "1000000000200-dddddddd.jpg" {
		t.Fatalf("同名败者应覆盖为一个文件：%+v", entries)
	}
}

func TestExecute_MoveResultFields(t *testing.T) {
	root := t.TempDir()
	quarantine := t.TempDir()
	content := []byte("zz")
	writeFile(t, filepath.Join(root, "sub", "1000000000100-cccccccc.jpg"), content)
	writeFile(t, filepath.Join(root, "sub", "1000000000200-cccccccc.jpg"), content)

	rr := Execute(context.Background(), Options{Root: root, QuarantineRoot: quarantine})
	if len(rr.Moves) != 1 {
		t.Fatalf("期望 1 条搬移记录：%+v", rr.Moves)
	}
	mv := rr.Moves[0]
	if mv.Status != domain.MoveStatusMoved ||
		mv.Fingerprint != "cccccccc" ||
		mv.Size != int64(len(content)) ||
		mv.Src != filepath.Join("sub", "1000000000200-cccccccc.jpg") ||
		mv.Dst != filepath.Join("cccccccc", "1000000000200-cccccccc.jpg") {
		t.Fatalf("搬移记录字段不符合预期：%+v", mv)
	}
}
