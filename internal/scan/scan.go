package scan

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Refs 从 r 中读取专辑引用列表（URL 或纯数字 ID）。
//
// 规则：
// - 每行可以有多个引用，以空白或逗号分隔
// - `#` 之后为注释；空行忽略
// - 保持出现顺序，不去重（去重由 app.GroupByAlbum 按 album_id 完成）
func Refs(r io.Reader) ([]string, error) {
	out := make([]string, 0, 32)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := stripComment(sc.Text())
		out = append(out, strings.FieldsFunc(line, isSep)...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RefsFile 读取文件；path 为 "-" 时读取标准输入。
func RefsFile(path string) ([]string, error) {
	if path == "-" {
		return Refs(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Refs(f)
}

func isSep(r rune) bool {
	return r == ',' || r == '，' || r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '　'
}

// stripComment 去掉行尾注释。
// # 紧贴在非分隔字符之后时视为 URL 片段（例如 ...?album_id=1#share），不当作注释。
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' || line[i-1] == ',' {
			return line[:i]
		}
	}
	return line
}
