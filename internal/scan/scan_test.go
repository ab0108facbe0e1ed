package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRefs_CommentsAndSeparators(t *testing.T) {
	in := strings.Join([]string{
		"# 待同步专辑",
		"100, 200",
		"",
		"https://s.rela.me/c/x?album_id=300#share   # 分享链接",
		"400，500\t600",
	}, "\n")

	got, err := Refs(strings.NewReader(in))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := []string{"100", "200", "https://s.rela.me/c/x?album_id=300#share", "400", "500", "600"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("期望 %v，实际 %v", want, got)
	}
}

func TestRefs_KeepsOrderAndDuplicates(t *testing.T) {
	got, err := Refs(strings.NewReader("2\n1\n2\n"))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !reflect.DeepEqual(got, []string{"2", "1", "2"}) {
		t.Fatalf("应保持顺序且不去重：%v", got)
	}
}

func TestRefsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "refs.txt")
	if err := os.WriteFile(p, []byte("7\n8\n"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	got, err := RefsFile(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个引用，实际 %v", got)
	}
	if _, err := RefsFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("期望文件不存在时报错")
	}
}
