package props

import "github.com/John-Robertt/YuriAudio2Notion/internal/domain"

// ParseAlbumFields 把外部传入的字段名（标识符或属性名）解析为去重、保序的字段请求集。
// unknown 按出现顺序返回无法识别的名字；调用方可以只记录日志后忽略。
func ParseAlbumFields(names []string) (fields []domain.AlbumField, unknown []string) {
	seen := make(map[domain.AlbumField]struct{}, len(names))
	for _, n := range names {
		f, ok := domain.ParseAlbumField(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	return fields, unknown
}

func ParseAudioFields(names []string) (fields []domain.AudioField, unknown []string) {
	seen := make(map[domain.AudioField]struct{}, len(names))
	for _, n := range names {
		f, ok := domain.ParseAudioField(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	return fields, unknown
}

// NeedsAlbumAssets 报告字段集中哪些封面需要解析；空字段集表示全量构建。
func NeedsAlbumAssets(fields []domain.AlbumField) (cover, horizontal, square bool) {
	if len(fields) == 0 {
		return true, true, true
	}
	for _, f := range fields {
		switch f {
		case domain.AlbumCover:
			cover = true
		case domain.AlbumCoverHorizontal:
			horizontal = true
		case domain.AlbumCoverSquare:
			square = true
		}
	}
	return cover, horizontal, square
}

func NeedsAudioCover(fields []domain.AudioField) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == domain.AudioCover {
			return true
		}
	}
	return false
}
