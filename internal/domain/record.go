package domain

// AssetRef 是一张需要上传到 Notion 的图片。
// SourceURL 来自 provider；UploadID 由 asset.Resolver 解析后回填（未解析时为空）。
type AssetRef struct {
	SourceURL string
	UploadID  string
}

// Resolved 表示该图片已经拿到 Notion file_upload id。
func (a AssetRef) Resolved() bool { return a.UploadID != "" }

// AlbumRecord 是一个专辑在写入 Notion 前的规范化记录。
//
// 约束：
// - 由 normalize.Album 一次性组装；图片 id 在构建属性前由调用方回填
// - 之后只读：props 包只读取与自身字段相关的成员
type AlbumRecord struct {
	AlbumID string
	Name    string

	Cover           AssetRef
	CoverHorizontal AssetRef
	CoverSquare     AssetRef

	Play         int64
	Liked        int64
	Price        int64
	EpisodeCount int

	// PublishDate 是不带时区偏移的本地时间（时区由构建属性时的 tz 参数给出）。
	PublishDate string

	Description       string
	DescriptionSequel string

	Author     string
	UpName     string
	Source     string
	Commercial string

	UpdateFrequency  []string
	Tags             []string
	MainCV           []string
	MainCVRole       []string
	SupportingCV     []string
	SupportingCVRole []string

	Platform  string
	AlbumLink string
}

// AudioRecord 是单集音频在写入 Notion 前的规范化记录。
type AudioRecord struct {
	AlbumID string
	AudioID string

	Name        string
	Cover       AssetRef
	Play        int64
	PublishDate string
	Description string
	Platform    string
}
