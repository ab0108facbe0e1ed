package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "a.json")

	if err := WriteFileAtomic(path, []byte("hello")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomic(path, []byte("world")); err != nil {
		t.Fatalf("覆盖写入不期望错误：%v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "world" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".a.json.tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomic_RenameFail_CleanupTemp(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return os.ErrPermission
	}
	defer func() { renameFunc = old }()

	if err := WriteFileAtomic(filepath.Join(dir, "a.json"), []byte("hello")); err == nil {
		t.Fatalf("期望失败，但得到 nil")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("不应留下任何文件：%v", entries)
	}
}

func TestJSONRoundTrip_KeepsURLReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	in := map[string]string{"https://img.test/a.png?x=1&y=2": "封面"}
	if err := WriteJSONAtomic(path, in); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "&y=2") || !strings.Contains(string(raw), "封面") {
		t.Fatalf("JSON 不应转义 & 与中文：%s", raw)
	}

	var out map[string]string
	ok, err := ReadJSON(path, &out)
	if err != nil || !ok {
		t.Fatalf("读取失败：ok=%v err=%v", ok, err)
	}
	if out["https://img.test/a.png?x=1&y=2"] != "封面" {
		t.Fatalf("内容不一致：%v", out)
	}
}

func TestReadJSON_Missing(t *testing.T) {
	var v map[string]string
	ok, err := ReadJSON(filepath.Join(t.TempDir(), "none.json"), &v)
	if ok || err != nil {
		t.Fatalf("文件不存在应返回 (false, nil)，实际 (%v, %v)", ok, err)
	}
}
