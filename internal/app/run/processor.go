package run

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/YuriAudio2Notion/internal/asset"
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
	"github.com/John-Robertt/YuriAudio2Notion/internal/normalize"
	"github.com/John-Robertt/YuriAudio2Notion/internal/notion"
	"github.com/John-Robertt/YuriAudio2Notion/internal/props"
	"github.com/John-Robertt/YuriAudio2Notion/internal/provider"
)

// Pages 是 Processor 需要的 Notion 页面能力（*notion.Client 满足该接口）。
type Pages interface {
	CreatePage(ctx context.Context, parent notion.Parent, props notion.Properties) (notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, props notion.Properties) (notion.Page, error)
}

// Assets 把图片源地址解析为 file_upload id（*asset.Resolver 满足该接口）。
type Assets interface {
	Resolve(ctx context.Context, sourceURL, logicalName string) (string, error)
}

// Processor 串起一次同步：拉取 -> 组装记录 -> 解析封面 -> 构建属性 -> 建页/更新。
//
// 约束：
// - 可被多个 goroutine 并发使用（自身无可变状态）
// - 失败统一包装为 *Error，Code 取 domain.ErrCode*，便于写入 report 或 HTTP 响应
type Processor struct {
	Source provider.Source
	Pages  Pages
	Assets Assets

	Normalize normalize.Options
	// TimeZone 写入 Notion 日期属性的 time_zone；为空时使用 props.DefaultTimeZone。
	TimeZone string

	// AlbumParent/AudioParent 是新建页面的默认父级；请求里显式给出时优先。
	AlbumParent notion.Parent
	AudioParent notion.Parent

	Logger *logging.Logger
}

// AlbumRequest：Fields 为空表示全量；非空时只写这些字段，且必须给出 PageID。
type AlbumRequest struct {
	Ref    string
	PageID string
	Parent notion.Parent
	Fields []string
}

type AudioRequest struct {
	AlbumRef string
	AudioID  string
	PageID   string
	Parent   notion.Parent
	Fields   []string
}

// Result 是一次成功同步的摘要。
type Result struct {
	AlbumID string
	AudioID string
	Name    string

	PageID  string
	PageURL string
	Created bool

	// Fields 是实际写入的 Notion 属性名（排序后）。
	Fields []string
	// Unknown 是请求中无法识别、已被忽略的字段名。
	Unknown []string
}

// Error 是带分类码的同步错误。
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode 返回 err 链上的分类码；不是 *Error 时返回空串。
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Message 返回去掉分类码前缀的错误描述。
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func fail(code string, err error) error { return &Error{Code: code, Err: err} }

func (p *Processor) logger() *logging.Logger {
	return logging.OrNop(p.Logger).Component("run")
}

// SyncAlbum 同步一个专辑页面：PageID 为空时新建，否则更新。
func (p *Processor) SyncAlbum(ctx context.Context, req AlbumRequest) (Result, error) {
	albumID, err := provider.ExtractAlbumID(req.Ref)
	if err != nil {
		return Result{}, fail(domain.ErrCodeInvalidRef, err)
	}
	fields, unknown := props.ParseAlbumFields(req.Fields)
	if err := checkPartial(len(req.Fields), len(fields), req.PageID); err != nil {
		return Result{AlbumID: albumID, Unknown: unknown}, err
	}
	log := p.logger().With("album_id", albumID)
	if len(unknown) > 0 {
		log.Warn("ignoring unknown fields", "fields", unknown)
	}

	bundle, err := provider.FetchAlbumBundle(ctx, p.Source, albumID)
	if err != nil {
		return Result{AlbumID: albumID}, fail(domain.ErrCodeFetchFailed, err)
	}
	rec := normalize.Album(bundle, p.Normalize)

	cover, horizontal, square := props.NeedsAlbumAssets(fields)
	g, gctx := errgroup.WithContext(ctx)
	p.resolveInto(gctx, g, cover, &rec.Cover, albumID+"_cover")
	p.resolveInto(gctx, g, horizontal, &rec.CoverHorizontal, albumID+"_horizontal")
	p.resolveInto(gctx, g, square, &rec.CoverSquare, albumID+"_square")
	if err := g.Wait(); err != nil {
		return Result{AlbumID: albumID, Name: rec.Name}, assetError(err)
	}

	var pp notion.Properties
	if len(fields) == 0 {
		pp = props.FullAlbum(&rec, p.TimeZone)
	} else {
		pp = props.BuildAlbum(fields, &rec, p.TimeZone)
	}

	res := Result{AlbumID: albumID, Name: rec.Name, Unknown: unknown, Fields: keys(pp)}
	page, created, err := p.write(ctx, req.PageID, pick(req.Parent, p.AlbumParent), pp)
	if err != nil {
		return res, err
	}
	res.PageID, res.PageURL, res.Created = page.ID, page.URL, created
	log.Info("album synced", "page_id", page.ID, "created", created, "fields", len(res.Fields))
	return res, nil
}

// SyncAudio 同步单集音频页面。
func (p *Processor) SyncAudio(ctx context.Context, req AudioRequest) (Result, error) {
	albumID, err := provider.ExtractAlbumID(req.AlbumRef)
	if err != nil {
		return Result{}, fail(domain.ErrCodeInvalidRef, err)
	}
	audioID := strings.TrimSpace(req.AudioID)
	if audioID == "" {
		return Result{AlbumID: albumID}, fail(domain.ErrCodeInvalidRef, errors.New("audio_id 不能为空"))
	}
	fields, unknown := props.ParseAudioFields(req.Fields)
	if err := checkPartial(len(req.Fields), len(fields), req.PageID); err != nil {
		return Result{AlbumID: albumID, AudioID: audioID, Unknown: unknown}, err
	}
	log := p.logger().With("album_id", albumID, "audio_id", audioID)
	if len(unknown) > 0 {
		log.Warn("ignoring unknown fields", "fields", unknown)
	}

	a, err := provider.FetchAudio(ctx, p.Source, albumID, audioID)
	if err != nil {
		return Result{AlbumID: albumID, AudioID: audioID}, fail(domain.ErrCodeFetchFailed, err)
	}
	rec := normalize.Audio(albumID, a, p.Normalize)

	g, gctx := errgroup.WithContext(ctx)
	p.resolveInto(gctx, g, props.NeedsAudioCover(fields), &rec.Cover, albumID+"_"+audioID)
	if err := g.Wait(); err != nil {
		return Result{AlbumID: albumID, AudioID: audioID, Name: rec.Name}, assetError(err)
	}

	var pp notion.Properties
	if len(fields) == 0 {
		pp = props.FullAudio(&rec, p.TimeZone)
	} else {
		pp = props.BuildAudio(fields, &rec, p.TimeZone)
	}

	res := Result{AlbumID: albumID, AudioID: audioID, Name: rec.Name, Unknown: unknown, Fields: keys(pp)}
	page, created, err := p.write(ctx, req.PageID, pick(req.Parent, p.AudioParent), pp)
	if err != nil {
		return res, err
	}
	res.PageID, res.PageURL, res.Created = page.ID, page.URL, created
	log.Info("audio synced", "page_id", page.ID, "created", created, "fields", len(res.Fields))
	return res, nil
}

// checkPartial：请求了字段却一个都不认识，或部分更新没有目标页面，都直接拒绝。
func checkPartial(requested, known int, pageID string) error {
	if requested == 0 {
		return nil
	}
	if known == 0 {
		return fail(domain.ErrCodeInvalidFields, errors.New("没有可识别的字段"))
	}
	if strings.TrimSpace(pageID) == "" {
		return fail(domain.ErrCodeInvalidFields, errors.New("部分更新需要 page_id"))
	}
	return nil
}

// resolveInto 在需要且有源地址时解析图片，并把 id 回填到 ref。
// logicalName 决定上传文件名，远端列表按文件名复用，所以必须由 album/audio id 构成而不是标题。
func (p *Processor) resolveInto(ctx context.Context, g *errgroup.Group, need bool, ref *domain.AssetRef, logicalName string) {
	if !need || ref.SourceURL == "" {
		return
	}
	if p.Assets == nil {
		return
	}
	g.Go(func() error {
		id, err := p.Assets.Resolve(ctx, ref.SourceURL, logicalName)
		if err != nil {
			return err
		}
		ref.UploadID = id
		return nil
	})
}

func assetError(err error) error {
	if asset.IsTimeout(err) {
		return fail(domain.ErrCodeAssetTimeout, err)
	}
	return fail(domain.ErrCodeAssetFailed, err)
}

func (p *Processor) write(ctx context.Context, pageID string, parent notion.Parent, pp notion.Properties) (notion.Page, bool, error) {
	if p.Pages == nil {
		return notion.Page{}, false, fail(domain.ErrCodeConfigInvalid, errors.New("notion client 未配置"))
	}
	if pageID = strings.TrimSpace(pageID); pageID != "" {
		page, err := p.Pages.UpdatePage(ctx, pageID, pp)
		if err != nil {
			return notion.Page{}, false, fail(domain.ErrCodeNotionFailed, err)
		}
		if page.ID == "" {
			page.ID = pageID
		}
		return page, false, nil
	}
	if parent.DataSourceID == "" && parent.DatabaseID == "" {
		return notion.Page{}, false, fail(domain.ErrCodeConfigInvalid, errors.New("缺少 data source：无法新建页面"))
	}
	page, err := p.Pages.CreatePage(ctx, parent, pp)
	if err != nil {
		return notion.Page{}, false, fail(domain.ErrCodeNotionFailed, err)
	}
	return page, true, nil
}

func pick(req, def notion.Parent) notion.Parent {
	if strings.TrimSpace(req.DataSourceID) != "" || strings.TrimSpace(req.DatabaseID) != "" {
		return req
	}
	return def
}

func keys(pp notion.Properties) []string {
	out := make([]string, 0, len(pp))
	for k := range pp {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
