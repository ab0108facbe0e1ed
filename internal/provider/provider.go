package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
)

// Source 把“站点变化”限制在 provider 包内部；核心流程只依赖统一接口与稳定的原始结构。
//
// 约束：
// - 不做缓存、不做限速（这些由上层统一实现）；重试只由 httpx 对 GET 做有界重试
// - albumID 必须是纯数字 id（由 ExtractAlbumID 得到）
type Source interface {
	Name() string
	FetchAlbum(ctx context.Context, albumID string) (Album, error)
	FetchCVList(ctx context.Context, albumID string) ([]CV, error)
	FetchAudios(ctx context.Context, albumID string) ([]Audio, error)
}

// Album 是专辑详情接口的原始字段（未做任何规范化）。
type Album struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PublishDate     string `json:"publish_date"`
	UpdateFrequency string `json:"update_frequency"`
	OriPrice        Int    `json:"ori_price"`
	AuthorName      string `json:"author_name"`

	Cover           string `json:"cover"`
	CoverHorizontal string `json:"horizontal"`
	CoverSquare     string `json:"square"`
	Play            Int    `json:"play"`
	Liked           Int    `json:"like"`
}

// CV 类型：1=主役，2=协役；其它值忽略。
const (
	CVMain       = 1
	CVSupporting = 2
)

type CV struct {
	Name     string `json:"name"`
	RoleName string `json:"role_name"`
	Type     int    `json:"cv_type"`
}

type Audio struct {
	AudioID     Int    `json:"audio_id"`
	Name        string `json:"name"`
	PublishDate string `json:"publish_date"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
	Square      string `json:"square"`
	Subtitle    string `json:"subtitle"`
	Play        Int    `json:"play"`
}

// Int 兼容上游把数字写成 number/float/字符串 的情况；无法解析时为 0。
type Int int64

func (n *Int) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	if v, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		*n = Int(v)
		return nil
	}
	if f, err := strconv.ParseFloat(string(b), 64); err == nil {
		*n = Int(f)
		return nil
	}
	*n = 0
	return nil
}
