// Package fsx 封装本地状态文件（封面缓存等）的原子读写。
package fsx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// 测试替换它来模拟 rename 失败。
var renameFunc = os.Rename

// WriteFileAtomic 原子写入 path（同目录临时文件 + rename），目标已存在时覆盖。
//
// 约束：
// - 读者要么看到旧内容，要么看到完整的新内容
// - 失败时不留下临时文件
func WriteFileAtomic(path string, data []byte) error {
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := writeAll(tmp, data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := renameFunc(tmpName, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("替换 %s 失败：%w", name, err)
	}

	// 目录 fsync：best-effort。
	_ = syncDirBestEffort(dir)
	return nil
}

// WriteJSONAtomic 把 v 编码为缩进 JSON 并原子写入 path。
// 不转义 HTML 字符，保证 URL 中的 & 与中文在文件里可读。
func WriteJSONAtomic(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// ReadJSON 读取并解码 path。文件不存在时返回 exists=false 且不报错。
func ReadJSON(path string, v any) (exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, err
	}
	return true, nil
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
