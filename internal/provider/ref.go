package provider

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractAlbumID 从分享链接的 album_id 查询参数中取出专辑 id；也接受纯数字 id。
func ExtractAlbumID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("专辑引用为空")
	}
	if isDigits(ref) {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("无效的专辑链接：%q", ref)
	}
	id := strings.TrimSpace(u.Query().Get("album_id"))
	if id == "" {
		return "", fmt.Errorf("专辑链接缺少 album_id：%q", ref)
	}
	return id, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
