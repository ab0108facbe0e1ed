// Package normalize 把 provider 的原始结构组装为只读的规范化记录。
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/YuriAudio2Notion/internal/blurb"
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
	"github.com/John-Robertt/YuriAudio2Notion/internal/provider"
)

const (
	DefaultAlbumLinkBase = "https://s.rela.me/c/1SqTNu?album_id="
	DefaultPlatform      = "饭角"
	DefaultTimeZone      = "Asia/Shanghai"
)

// Options 为空值时使用默认值。
type Options struct {
	AlbumLinkBase string
	Platform      string
	// Location 是 Notion 日期属性所用的时区；发布时间换算到该时区的墙上时间。
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.AlbumLinkBase) == "" {
		o.AlbumLinkBase = DefaultAlbumLinkBase
	}
	if strings.TrimSpace(o.Platform) == "" {
		o.Platform = DefaultPlatform
	}
	if o.Location == nil {
		if loc, err := time.LoadLocation(DefaultTimeZone); err == nil {
			o.Location = loc
		} else {
			o.Location = time.FixedZone("CST", 8*3600)
		}
	}
	return o
}

// Album 组装专辑记录。图片只带源地址；file_upload id 由调用方解析后回填。
func Album(b provider.AlbumBundle, opts Options) domain.AlbumRecord {
	opts = opts.withDefaults()
	a := b.Album
	d := blurb.Parse(a.Description)

	r := domain.AlbumRecord{
		AlbumID: b.AlbumID,
		Name:    a.Name,

		Cover:           domain.AssetRef{SourceURL: strings.TrimSpace(a.Cover)},
		CoverHorizontal: domain.AssetRef{SourceURL: strings.TrimSpace(a.CoverHorizontal)},
		CoverSquare:     domain.AssetRef{SourceURL: strings.TrimSpace(a.CoverSquare)},

		Play:         int64(a.Play),
		Liked:        int64(a.Liked),
		Price:        int64(a.OriPrice),
		EpisodeCount: d.EpisodeCount,
		PublishDate:  PublishDate(a.PublishDate, opts.Location),

		Description:       d.MainText,
		DescriptionSequel: d.SupplementalText,

		Author:     strings.TrimSpace(a.AuthorName),
		UpName:     d.ProducerName,
		Source:     Source(d.SupplementalText),
		Commercial: Commercial(int64(a.OriPrice)),

		UpdateFrequency: UpdateFrequency(a.UpdateFrequency),
		Tags:            d.Tags,

		Platform: opts.Platform,
	}
	if b.AlbumID != "" {
		r.AlbumLink = opts.AlbumLinkBase + b.AlbumID
	}
	r.MainCV, r.MainCVRole, r.SupportingCV, r.SupportingCVRole = SplitCV(b.CVs)
	return r
}

// Audio 组装单集音频记录。
func Audio(albumID string, a provider.Audio, opts Options) domain.AudioRecord {
	opts = opts.withDefaults()
	return domain.AudioRecord{
		AlbumID:     albumID,
		AudioID:     formatInt(int64(a.AudioID)),
		Name:        a.Name,
		Cover:       domain.AssetRef{SourceURL: strings.TrimSpace(a.Cover)},
		Play:        int64(a.Play),
		PublishDate: PublishDate(a.PublishDate, opts.Location),
		Description: a.Description,
		Platform:    opts.Platform,
	}
}

// Source：补充说明里提到“原著”即为改编。
func Source(supplemental string) string {
	if strings.Contains(supplemental, "原著") {
		return "改编"
	}
	return "原创"
}

// Commercial：原价大于 0 为商剧。
func Commercial(price int64) string {
	if price > 0 {
		return "商剧"
	}
	return "非商"
}

var weekdayRE = regexp.MustCompile(`周([一二三四五六日])`)

// UpdateFrequency 把更新频率整理为多选值：
//
//	""          => ["未知"]
//	"已完结"     => ["已完结"]
//	"每周一、周四" => ["每周一更新", "每周四更新"]
//	其它        => 原文
func UpdateFrequency(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{"未知"}
	}
	if strings.Contains(s, "完结") {
		return []string{"已完结"}
	}
	if m := weekdayRE.FindAllStringSubmatch(s, -1); len(m) > 0 {
		out := make([]string, 0, len(m))
		for _, x := range m {
			out = append(out, "每周"+x[1]+"更新")
		}
		return out
	}
	return []string{s}
}

// SplitCV 按类型拆分主役/协役；其它类型忽略。切片保持上游顺序且非 nil。
func SplitCV(cvs []provider.CV) (main, mainRole, supporting, supportingRole []string) {
	main, mainRole = []string{}, []string{}
	supporting, supportingRole = []string{}, []string{}
	for _, cv := range cvs {
		switch cv.Type {
		case provider.CVMain:
			main = append(main, cv.Name)
			mainRole = append(mainRole, cv.RoleName)
		case provider.CVSupporting:
			supporting = append(supporting, cv.Name)
			supportingRole = append(supportingRole, cv.RoleName)
		}
	}
	return main, mainRole, supporting, supportingRole
}

const wallClock = "2006-01-02T15:04:05"

// PublishDate 把上游时间换算为 loc 下不带偏移的墙上时间（Notion 日期属性另带 time_zone）。
// 无法识别的格式原样返回。
func PublishDate(s string, loc *time.Location) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc).Format(wallClock)
	}
	for _, layout := range []string{"2006-01-02 15:04:05", wallClock} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format(wallClock)
		}
	}
	return s
}

func formatInt(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
