package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/John-Robertt/YuriAudio2Notion/internal/app/run"
	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
)

type fakeSyncer struct {
	mu     sync.Mutex
	albums []run.AlbumRequest
	audios []run.AudioRequest
	err    error
}

func (f *fakeSyncer) SyncAlbum(ctx context.Context, req run.AlbumRequest) (run.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.albums = append(f.albums, req)
	if f.err != nil {
		return run.Result{AlbumID: "100"}, f.err
	}
	return run.Result{AlbumID: "100", Name: "专辑", PageID: "page-1", Created: req.PageID == "", Fields: []string{"Name"}}, nil
}

func (f *fakeSyncer) SyncAudio(ctx context.Context, req run.AudioRequest) (run.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audios = append(f.audios, req)
	if f.err != nil {
		return run.Result{}, f.err
	}
	return run.Result{AlbumID: "100", AudioID: req.AudioID, PageID: "page-a"}, nil
}

func newTestRouter(key string, s Syncer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(Options{APIKey: key, Syncer: s})
}

func do(r http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("响应不是 JSON：%v body=%s", err, rec.Body.String())
	}
	return m
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter("secret", &fakeSyncer{})
	rec := do(r, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "running") {
		t.Fatalf("健康检查失败：%d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("响应应带 %s", HeaderRequestID)
	}
}

func TestRequireAPIKey(t *testing.T) {
	s := &fakeSyncer{}
	r := newTestRouter("secret", s)
	body := `{"url":"100"}`

	if rec := do(r, http.MethodPost, "/webhook-url", body, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("缺少 key 应为 401，实际 %d", rec.Code)
	}
	if rec := do(r, http.MethodPost, "/webhook-url", body, map[string]string{HeaderAPIKey: "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("错误 key 应为 401，实际 %d", rec.Code)
	}
	if rec := do(r, http.MethodPost, "/webhook-url", body, map[string]string{HeaderAPIKey: "secret"}); rec.Code != http.StatusOK {
		t.Fatalf("正确 key（请求头）应为 200，实际 %d", rec.Code)
	}
	if rec := do(r, http.MethodPost, "/webhook-url?api_key=secret", body, nil); rec.Code != http.StatusOK {
		t.Fatalf("正确 key（查询参数）应为 200，实际 %d", rec.Code)
	}
	if len(s.albums) != 2 {
		t.Fatalf("鉴权失败的请求不应进入同步，实际 %d 次", len(s.albums))
	}
}

func TestRequireAPIKey_EmptyKeyAllows(t *testing.T) {
	r := newTestRouter("", &fakeSyncer{})
	if rec := do(r, http.MethodPost, "/webhook-url", `{"url":"100"}`, nil); rec.Code != http.StatusOK {
		t.Fatalf("未配置 key 时应放行，实际 %d", rec.Code)
	}
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	r := newTestRouter("", &fakeSyncer{})
	rec := do(r, http.MethodGet, "/", "", map[string]string{HeaderRequestID: "abc"})
	if got := rec.Header().Get(HeaderRequestID); got != "abc" {
		t.Fatalf("期望沿用 abc，实际 %q", got)
	}
}

func TestWebhookDatabase(t *testing.T) {
	s := &fakeSyncer{}
	r := newTestRouter("", s)

	body := `{"data":{"id":"page-9","parent":{"type":"data_source_id","data_source_id":"ds-1"},
		"properties":{"Upload URL":{"type":"url","url":"https://s.rela.me/c/x?album_id=100"}}}}`
	rec := do(r, http.MethodPost, "/webhook-database", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d %s", rec.Code, rec.Body.String())
	}
	got := s.albums[0]
	if got.PageID != "page-9" || got.Parent.DataSourceID != "ds-1" || !strings.Contains(got.Ref, "album_id=100") {
		t.Fatalf("请求转换不符合预期：%+v", got)
	}

	// URL 为空：提示但不报错。
	empty := `{"data":{"id":"page-9","parent":{},"properties":{"Upload URL":{"url":null}}}}`
	rec = do(r, http.MethodPost, "/webhook-database", empty, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "warning" {
		t.Fatalf("空 URL 应返回 warning：%d %s", rec.Code, rec.Body.String())
	}

	for _, bad := range []string{`not json`, `{}`, `{"data":{"id":"p","properties":{}}}`} {
		if rec := do(r, http.MethodPost, "/webhook-database", bad, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%q 应为 400，实际 %d", bad, rec.Code)
		}
	}
	if len(s.albums) != 1 {
		t.Fatalf("无效请求不应进入同步")
	}
}

func TestWebhookPage(t *testing.T) {
	s := &fakeSyncer{}
	r := newTestRouter("", s)

	if rec := do(r, http.MethodPost, "/webhook-page", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("缺少 url 头应为 400，实际 %d", rec.Code)
	}
	rec := do(r, http.MethodPost, "/webhook-page", "", map[string]string{"url": "100"})
	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", rec.Code)
	}
	m := decode(t, rec)
	if m["page_id"] != "page-1" || m["created"] != true {
		t.Fatalf("响应不符合预期：%v", m)
	}
}

func TestWebhookUpdate(t *testing.T) {
	s := &fakeSyncer{}
	r := newTestRouter("", s)

	if rec := do(r, http.MethodPost, "/webhook-update", `{"url":"100","page_id":"p"}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("缺少 fields 应为 400，实际 %d", rec.Code)
	}
	rec := do(r, http.MethodPost, "/webhook-update", `{"url":"100","page_id":"p","fields":["PLAY","LIKED"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", rec.Code)
	}
	got := s.albums[0]
	if got.PageID != "p" || len(got.Fields) != 2 || got.Fields[0] != "PLAY" {
		t.Fatalf("请求转换不符合预期：%+v", got)
	}
}

func TestWebhookAudio(t *testing.T) {
	s := &fakeSyncer{}
	r := newTestRouter("", s)

	if rec := do(r, http.MethodPost, "/webhook-audio", `{"url":"100"}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("缺少 audio_id 应为 400，实际 %d", rec.Code)
	}
	rec := do(r, http.MethodPost, "/webhook-audio", `{"url":"100","audio_id":"7"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", rec.Code)
	}
	if m := decode(t, rec); m["audio_id"] != "7" {
		t.Fatalf("响应缺少 audio_id：%v", m)
	}
}

func TestSyncErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{domain.ErrCodeInvalidRef, http.StatusBadRequest},
		{domain.ErrCodeInvalidFields, http.StatusBadRequest},
		{domain.ErrCodeFetchFailed, http.StatusBadGateway},
		{domain.ErrCodeAssetTimeout, http.StatusGatewayTimeout},
		{domain.ErrCodeNotionFailed, http.StatusBadGateway},
		{domain.ErrCodeConfigInvalid, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		s := &fakeSyncer{err: &run.Error{Code: tc.code, Err: errors.New("boom")}}
		r := newTestRouter("", s)
		rec := do(r, http.MethodPost, "/webhook-url", `{"url":"100"}`, nil)
		if rec.Code != tc.want {
			t.Fatalf("%s：期望 %d，实际 %d", tc.code, tc.want, rec.Code)
		}
		m := decode(t, rec)
		if m["error_code"] != tc.code || m["message"] != "boom" {
			t.Fatalf("%s：响应不符合预期：%v", tc.code, m)
		}
	}
}
