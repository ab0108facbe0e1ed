package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// 失败阶段（写入 Error.Stage）。
const (
	StageAlbum = "album"
	StageCV    = "cv"
	StageAudio = "audio"
)

// ErrAudioNotFound 表示专辑的音频列表中没有请求的 audio_id。
var ErrAudioNotFound = errors.New("audio 不存在")

// Error 是 provider 阶段的可追溯错误。
// 上层可以据此把失败归类为 fetch_failed，并写入 report。
type Error struct {
	Provider string // provider name（小写）
	Stage    string // "album" / "cv" / "audio"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AlbumBundle 是一次专辑抓取的全部原始数据。
type AlbumBundle struct {
	AlbumID string
	Album   Album
	CVs     []CV
}

// FetchAlbumBundle 并发抓取专辑详情与 CV 列表；任一失败即整体失败。
func FetchAlbumBundle(ctx context.Context, src Source, albumID string) (AlbumBundle, error) {
	if src == nil {
		return AlbumBundle{}, errors.New("source 不能为空")
	}
	albumID = strings.TrimSpace(albumID)
	if albumID == "" {
		return AlbumBundle{}, errors.New("album_id 不能为空")
	}

	name := strings.ToLower(src.Name())
	b := AlbumBundle{AlbumID: albumID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := src.FetchAlbum(gctx, albumID)
		if err != nil {
			return &Error{Provider: name, Stage: StageAlbum, Err: err}
		}
		b.Album = a
		return nil
	})
	g.Go(func() error {
		cvs, err := src.FetchCVList(gctx, albumID)
		if err != nil {
			return &Error{Provider: name, Stage: StageCV, Err: err}
		}
		b.CVs = cvs
		return nil
	})
	if err := g.Wait(); err != nil {
		return AlbumBundle{}, err
	}
	return b, nil
}

// FetchAudio 拉取专辑的音频列表并按 audioID 选出一条。
func FetchAudio(ctx context.Context, src Source, albumID, audioID string) (Audio, error) {
	if src == nil {
		return Audio{}, errors.New("source 不能为空")
	}
	name := strings.ToLower(src.Name())
	list, err := src.FetchAudios(ctx, albumID)
	if err != nil {
		return Audio{}, &Error{Provider: name, Stage: StageAudio, Err: err}
	}
	a, ok := FindAudio(list, audioID)
	if !ok {
		return Audio{}, &Error{Provider: name, Stage: StageAudio, Err: fmt.Errorf("%w: audio_id=%s", ErrAudioNotFound, audioID)}
	}
	return a, nil
}

// FindAudio 在列表中查找 audioID（上游返回整数 id，这里按整数比较）。
func FindAudio(list []Audio, audioID string) (Audio, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(audioID), 10, 64)
	if err != nil {
		return Audio{}, false
	}
	for _, a := range list {
		if int64(a.AudioID) == id {
			return a, true
		}
	}
	return Audio{}, false
}
