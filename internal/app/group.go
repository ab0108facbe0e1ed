package app

import (
	"sort"
	"strings"

	"github.com/John-Robertt/YuriAudio2Notion/internal/provider"
)

// WorkItem 是一个待同步的专辑；Refs 记录解析到同一 album_id 的所有原始输入。
type WorkItem struct {
	AlbumID string
	Refs    []string
}

// InvalidRef 是无法解析出 album_id 的输入。
type InvalidRef struct {
	Ref string
	Err error
}

// GroupByAlbum 把输入（专辑 URL 或纯数字 ID）按 album_id 分组。
//
// - 同一专辑的多个输入只产生一个 WorkItem，避免重复建页
// - items 稳定排序：按 album_id 字典序；item 内 Refs 保持输入顺序
// - 空白输入直接忽略
func GroupByAlbum(refs []string) (items []WorkItem, invalid []InvalidRef) {
	index := make(map[string]int, len(refs))
	items = make([]WorkItem, 0, len(refs))

	for _, raw := range refs {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			continue
		}
		id, err := provider.ExtractAlbumID(ref)
		if err != nil {
			invalid = append(invalid, InvalidRef{Ref: ref, Err: err})
			continue
		}
		if idx, ok := index[id]; ok {
			items[idx].Refs = append(items[idx].Refs, ref)
			continue
		}
		index[id] = len(items)
		items = append(items, WorkItem{AlbumID: id, Refs: []string{ref}})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].AlbumID < items[j].AlbumID })
	return items, invalid
}
