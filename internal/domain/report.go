package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

const (
	ErrCodeInvalidRef    = "invalid_ref"
	ErrCodeInvalidFields = "invalid_fields"
	ErrCodeFetchFailed   = "fetch_failed"
	ErrCodeAssetFailed   = "asset_failed"
	ErrCodeAssetTimeout  = "asset_timeout"
	ErrCodeNotionFailed  = "notion_failed"
	ErrCodeConfigInvalid = "config_invalid"
)

// RunReport 是批量同步（sync 命令）对外稳定输出的结构。
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ItemResult 记录一个输入（专辑 URL 或 ID）的处理结果。
type ItemResult struct {
	Ref     string `json:"ref"`
	AlbumID string `json:"album_id"`
	Name    string `json:"name"`
	PageID  string `json:"page_id"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Fields []string `json:"fields"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 album_id 字典序；album_id=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].AlbumID
		b := r.Items[j].AlbumID
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 集中约束输出的稳定性：nil 切片输出为 []。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Items == nil {
		a.Items = []ItemResult{}
	}
	for i := range a.Items {
		if a.Items[i].Fields == nil {
			a.Items[i].Fields = []string{}
		}
	}
	return json.Marshal(a)
}
