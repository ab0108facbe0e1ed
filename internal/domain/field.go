package domain

import "strings"

// AlbumField 是专辑数据库可更新字段的封闭枚举。
// 每个字段恰好对应 Notion 属性表中的一个属性名（见 Property）。
type AlbumField int

const (
	AlbumName AlbumField = iota
	AlbumCover
	AlbumCoverHorizontal
	AlbumCoverSquare
	AlbumPlay
	AlbumLiked
	AlbumPrice
	AlbumEpisodeCount
	AlbumPublishDate
	AlbumDescription
	AlbumDescriptionSequel
	AlbumAuthor
	AlbumUpName
	AlbumSource
	AlbumCommercial
	AlbumUpdateFreq
	AlbumTags
	AlbumMainCV
	AlbumMainCVRole
	AlbumSupportingCV
	AlbumSupportingCVRole
	AlbumPlatform
	AlbumLink

	// AlbumFieldCount 必须保持在最后。
	AlbumFieldCount
)

var albumFieldNames = [AlbumFieldCount]struct{ id, prop string }{
	AlbumName:              {"NAME", "Name"},
	AlbumCover:             {"COVER", "Cover"},
	AlbumCoverHorizontal:   {"COVER_HORIZONTAL", "Cover_horizontal"},
	AlbumCoverSquare:       {"COVER_SQUARE", "Cover_square"},
	AlbumPlay:              {"PLAY", "播放"},
	AlbumLiked:             {"LIKED", "追剧"},
	AlbumPrice:             {"PRICE", "Price"},
	AlbumEpisodeCount:      {"EPISODE_COUNT", "Episode Count"},
	AlbumPublishDate:       {"PUBLISH_DATE", "Publish Date"},
	AlbumDescription:       {"DESCRIPTION", "简介"},
	AlbumDescriptionSequel: {"DESCRIPTION_SEQUEL", "简介续"},
	AlbumAuthor:            {"AUTHOR", "原著"},
	AlbumUpName:            {"UP_NAME", "up主"},
	AlbumSource:            {"SOURCE", "来源"},
	AlbumCommercial:        {"COMMERCIAL", "商剧"},
	AlbumUpdateFreq:        {"UPDATE_FREQ", "更新"},
	AlbumTags:              {"TAGS", "Tags"},
	AlbumMainCV:            {"MAIN_CV", "cv主役"},
	AlbumMainCVRole:        {"MAIN_CV_ROLE", "饰演角色"},
	AlbumSupportingCV:      {"SUPPORTING_CV", "cv协役"},
	AlbumSupportingCVRole:  {"SUPPORTING_CV_ROLE", "协役饰演角色"},
	AlbumPlatform:          {"PLATFORM", "Platform"},
	AlbumLink:              {"ALBUM_LINK", "Album Link"},
}

// String 返回字段标识符（例如 "PLAY"）。
func (f AlbumField) String() string {
	if f < 0 || f >= AlbumFieldCount {
		return "UNKNOWN"
	}
	return albumFieldNames[f].id
}

// Property 返回字段在 Notion 专辑数据库中的属性名（例如 "播放"）。
func (f AlbumField) Property() string {
	if f < 0 || f >= AlbumFieldCount {
		return ""
	}
	return albumFieldNames[f].prop
}

// Valid 报告 f 是否属于枚举。
func (f AlbumField) Valid() bool { return f >= 0 && f < AlbumFieldCount }

// AllAlbumFields 按枚举顺序返回全部字段（用于创建页面的全量构建）。
func AllAlbumFields() []AlbumField {
	out := make([]AlbumField, 0, AlbumFieldCount)
	for f := AlbumField(0); f < AlbumFieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// ParseAlbumField 接受字段标识符（大小写不敏感）或 Notion 属性名。
func ParseAlbumField(s string) (AlbumField, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for f := AlbumField(0); f < AlbumFieldCount; f++ {
		n := albumFieldNames[f]
		if strings.EqualFold(s, n.id) || s == n.prop {
			return f, true
		}
	}
	return 0, false
}

// AudioField 是音频数据库可更新字段的封闭枚举。
type AudioField int

const (
	AudioName AudioField = iota
	AudioCover
	AudioPlay
	AudioPublishDate
	AudioDescription
	AudioPlatform

	// AudioFieldCount 必须保持在最后。
	AudioFieldCount
)

var audioFieldNames = [AudioFieldCount]struct{ id, prop string }{
	AudioName:        {"NAME", "Name"},
	AudioCover:       {"COVER", "Cover"},
	AudioPlay:        {"PLAY", "播放"},
	AudioPublishDate: {"PUBLISH_DATE", "Publish Date"},
	AudioDescription: {"DESCRIPTION", "Description"},
	AudioPlatform:    {"PLATFORM", "Platform"},
}

func (f AudioField) String() string {
	if f < 0 || f >= AudioFieldCount {
		return "UNKNOWN"
	}
	return audioFieldNames[f].id
}

func (f AudioField) Property() string {
	if f < 0 || f >= AudioFieldCount {
		return ""
	}
	return audioFieldNames[f].prop
}

func (f AudioField) Valid() bool { return f >= 0 && f < AudioFieldCount }

func AllAudioFields() []AudioField {
	out := make([]AudioField, 0, AudioFieldCount)
	for f := AudioField(0); f < AudioFieldCount; f++ {
		out = append(out, f)
	}
	return out
}

func ParseAudioField(s string) (AudioField, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for f := AudioField(0); f < AudioFieldCount; f++ {
		n := audioFieldNames[f]
		if strings.EqualFold(s, n.id) || s == n.prop {
			return f, true
		}
	}
	return 0, false
}
