package notion

import "encoding/json"

// 属性类型（与 Notion API 的 type 字段一致）。
const (
	TypeTitle       = "title"
	TypeRichText    = "rich_text"
	TypeNumber      = "number"
	TypeSelect      = "select"
	TypeMultiSelect = "multi_select"
	TypeDate        = "date"
	TypeFiles       = "files"
	TypeURL         = "url"
)

// Properties 是页面属性表：属性名 -> 属性值。
type Properties map[string]Property

// Property 是单个页面属性值。只有与 Type 对应的成员参与序列化。
type Property struct {
	Type string

	Text     string   // title / rich_text
	Number   float64  // number
	Name     string   // select
	Names    []string // multi_select
	Start    string   // date
	TimeZone string   // date
	UploadID string   // files（file_upload）
	URL      string   // url
}

func Title(s string) Property    { return Property{Type: TypeTitle, Text: s} }
func RichText(s string) Property { return Property{Type: TypeRichText, Text: s} }
func Number(n float64) Property  { return Property{Type: TypeNumber, Number: n} }
func Select(name string) Property {
	return Property{Type: TypeSelect, Name: name}
}

// MultiSelect 复制 names，调用方之后修改切片不会影响属性值。
func MultiSelect(names ...string) Property {
	cp := make([]string, len(names))
	copy(cp, names)
	return Property{Type: TypeMultiSelect, Names: cp}
}

func Date(start, timeZone string) Property {
	return Property{Type: TypeDate, Start: start, TimeZone: timeZone}
}

func FileUploadRef(id string) Property { return Property{Type: TypeFiles, UploadID: id} }
func URL(u string) Property            { return Property{Type: TypeURL, URL: u} }

type textContent struct {
	Content string `json:"content"`
}

type richTextItem struct {
	Text textContent `json:"text"`
}

type nameItem struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start    string `json:"start"`
	TimeZone string `json:"time_zone,omitempty"`
}

type fileRef struct {
	ID string `json:"id"`
}

type fileItem struct {
	Type       string  `json:"type"`
	FileUpload fileRef `json:"file_upload"`
}

// MarshalJSON 输出 Notion 的属性值形状，例如 {"number": 3}、{"multi_select": [{"name": "x"}]}。
func (p Property) MarshalJSON() ([]byte, error) {
	var v any
	switch p.Type {
	case TypeTitle, TypeRichText:
		v = []richTextItem{{Text: textContent{Content: p.Text}}}
	case TypeNumber:
		v = p.Number
	case TypeSelect:
		v = nameItem{Name: p.Name}
	case TypeMultiSelect:
		items := make([]nameItem, 0, len(p.Names))
		for _, n := range p.Names {
			items = append(items, nameItem{Name: n})
		}
		v = items
	case TypeDate:
		v = dateValue{Start: p.Start, TimeZone: p.TimeZone}
	case TypeFiles:
		v = []fileItem{{Type: "file_upload", FileUpload: fileRef{ID: p.UploadID}}}
	case TypeURL:
		v = p.URL
	default:
		return nil, &json.UnsupportedValueError{Str: "notion property type " + p.Type}
	}
	return json.Marshal(map[string]any{p.Type: v})
}
