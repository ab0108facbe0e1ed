// Package props 把规范化记录按字段请求集构建为 Notion 页面属性。
//
// 约束：
// - 每个字段恰好由一个处理函数负责，处理函数只产出以自身属性名为键的片段（或空片段）
// - 构建过程无 I/O；相同输入得到相同输出
package props

import (
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
	"github.com/John-Robertt/YuriAudio2Notion/internal/notion"
)

// DefaultTimeZone 是日期属性未指定时区时使用的 IANA 时区。
const DefaultTimeZone = "Asia/Shanghai"

// DefaultPlatform 是记录未给出平台时写入的平台名。
const DefaultPlatform = "饭角"

type albumFieldFunc func(r *domain.AlbumRecord, tz string) (notion.Property, bool)

type audioFieldFunc func(r *domain.AudioRecord, tz string) (notion.Property, bool)

// 按枚举下标索引：同一字段不可能登记两次。
var albumFields = [domain.AlbumFieldCount]albumFieldFunc{
	domain.AlbumName: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.Title(r.Name), true
	},
	domain.AlbumCover: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return files(r.Cover)
	},
	domain.AlbumCoverHorizontal: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return files(r.CoverHorizontal)
	},
	domain.AlbumCoverSquare: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return files(r.CoverSquare)
	},
	domain.AlbumPlay: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.Number(float64(r.Play)), true
	},
	domain.AlbumLiked: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.Number(float64(r.Liked)), true
	},
	domain.AlbumPrice: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.Number(float64(r.Price)), true
	},
	domain.AlbumEpisodeCount: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.Number(float64(r.EpisodeCount)), true
	},
	domain.AlbumPublishDate: func(r *domain.AlbumRecord, tz string) (notion.Property, bool) {
		return date(r.PublishDate, tz)
	},
	domain.AlbumDescription: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.RichText(r.Description), true
	},
	domain.AlbumDescriptionSequel: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.RichText(r.DescriptionSequel), true
	},
	domain.AlbumAuthor: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return selectOf(r.Author)
	},
	domain.AlbumUpName: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return selectOf(r.UpName)
	},
	domain.AlbumSource: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return selectOf(r.Source)
	},
	domain.AlbumCommercial: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return selectOf(r.Commercial)
	},
	domain.AlbumUpdateFreq: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(r.UpdateFrequency...), true
	},
	domain.AlbumTags: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(r.Tags...), true
	},
	domain.AlbumMainCV: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(r.MainCV...), true
	},
	domain.AlbumMainCVRole: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(r.MainCVRole...), true
	},
	domain.AlbumSupportingCV: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(r.SupportingCV...), true
	},
	domain.AlbumSupportingCVRole: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(r.SupportingCVRole...), true
	},
	domain.AlbumPlatform: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(platform(r.Platform)), true
	},
	domain.AlbumLink: func(r *domain.AlbumRecord, _ string) (notion.Property, bool) {
		if r.AlbumLink == "" {
			return notion.Property{}, false
		}
		return notion.URL(r.AlbumLink), true
	},
}

var audioFields = [domain.AudioFieldCount]audioFieldFunc{
	domain.AudioName: func(r *domain.AudioRecord, _ string) (notion.Property, bool) {
		return notion.Title(r.Name), true
	},
	domain.AudioCover: func(r *domain.AudioRecord, _ string) (notion.Property, bool) {
		return files(r.Cover)
	},
	domain.AudioPlay: func(r *domain.AudioRecord, _ string) (notion.Property, bool) {
		return notion.Number(float64(r.Play)), true
	},
	domain.AudioPublishDate: func(r *domain.AudioRecord, tz string) (notion.Property, bool) {
		return date(r.PublishDate, tz)
	},
	domain.AudioDescription: func(r *domain.AudioRecord, _ string) (notion.Property, bool) {
		return notion.RichText(r.Description), true
	},
	domain.AudioPlatform: func(r *domain.AudioRecord, _ string) (notion.Property, bool) {
		return notion.MultiSelect(platform(r.Platform)), true
	},
}

// BuildAlbum 按调用方顺序构建请求字段的属性；未知字段跳过，空片段不写入。
func BuildAlbum(fields []domain.AlbumField, r *domain.AlbumRecord, tz string) notion.Properties {
	out := make(notion.Properties, len(fields))
	if r == nil {
		return out
	}
	tz = timeZone(tz)
	for _, f := range fields {
		if !f.Valid() {
			continue
		}
		fn := albumFields[f]
		if fn == nil {
			continue
		}
		if p, ok := fn(r, tz); ok {
			out[f.Property()] = p
		}
	}
	return out
}

// FullAlbum 构建全部字段（用于新建页面）。
func FullAlbum(r *domain.AlbumRecord, tz string) notion.Properties {
	return BuildAlbum(domain.AllAlbumFields(), r, tz)
}

func BuildAudio(fields []domain.AudioField, r *domain.AudioRecord, tz string) notion.Properties {
	out := make(notion.Properties, len(fields))
	if r == nil {
		return out
	}
	tz = timeZone(tz)
	for _, f := range fields {
		if !f.Valid() {
			continue
		}
		fn := audioFields[f]
		if fn == nil {
			continue
		}
		if p, ok := fn(r, tz); ok {
			out[f.Property()] = p
		}
	}
	return out
}

func FullAudio(r *domain.AudioRecord, tz string) notion.Properties {
	return BuildAudio(domain.AllAudioFields(), r, tz)
}

func files(a domain.AssetRef) (notion.Property, bool) {
	if !a.Resolved() {
		return notion.Property{}, false
	}
	return notion.FileUploadRef(a.UploadID), true
}

func date(start, tz string) (notion.Property, bool) {
	if start == "" {
		return notion.Property{}, false
	}
	return notion.Date(start, tz), true
}

func selectOf(name string) (notion.Property, bool) {
	if name == "" {
		return notion.Property{}, false
	}
	return notion.Select(name), true
}

func platform(p string) string {
	if p == "" {
		return DefaultPlatform
	}
	return p
}

func timeZone(tz string) string {
	if tz == "" {
		return DefaultTimeZone
	}
	return tz
}
