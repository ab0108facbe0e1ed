package asset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/cache"
	"github.com/John-Robertt/YuriAudio2Notion/internal/notion"
)

var (
	pngHead  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 1, 2, 3}
	jpegHead = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F'}
)

type fakeUploads struct {
	mu sync.Mutex

	listed   [][]notion.FileUpload // 每页结果
	statuses []string              // RetrieveFileUpload 依次返回的状态
	detail   string

	createCalls   int32
	listCalls     int32
	retrieveCalls int32
	created       []notion.CreateFileUploadRequest
}

func (f *fakeUploads) CreateFileUpload(ctx context.Context, req notion.CreateFileUploadRequest) (notion.FileUpload, error) {
	n := atomic.AddInt32(&f.createCalls, 1)
	f.mu.Lock()
	f.created = append(f.created, req)
	f.mu.Unlock()
	return notion.FileUpload{ID: fmt.Sprintf("fu-%d", n), Status: notion.UploadPending, Filename: req.Filename}, nil
}

func (f *fakeUploads) RetrieveFileUpload(ctx context.Context, id string) (notion.FileUpload, error) {
	i := int(atomic.AddInt32(&f.retrieveCalls, 1)) - 1
	status := notion.UploadUploaded
	if len(f.statuses) > 0 {
		if i >= len(f.statuses) {
			i = len(f.statuses) - 1
		}
		status = f.statuses[i]
	}
	fu := notion.FileUpload{ID: id, Status: status}
	if status == notion.UploadFailed && f.detail != "" {
		fu.FileImportResult = &notion.FileImportResult{Type: "error", Error: &notion.ImportError{Message: f.detail}}
	}
	return fu, nil
}

func (f *fakeUploads) ListFileUploads(ctx context.Context, cursor string) (notion.FileUploadList, error) {
	atomic.AddInt32(&f.listCalls, 1)
	i := 0
	if cursor != "" {
		fmt.Sscanf(cursor, "p%d", &i)
	}
	if i >= len(f.listed) {
		return notion.FileUploadList{}, nil
	}
	l := notion.FileUploadList{Results: f.listed[i]}
	if i+1 < len(f.listed) {
		l.HasMore = true
		l.NextCursor = fmt.Sprintf("p%d", i+1)
	}
	return l, nil
}

func newImageServer(t *testing.T, head []byte) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("Range") != "bytes=0-15" {
			t.Errorf("期望 Range 请求头，实际 %q", r.Header.Get("Range"))
		}
		if strings.HasSuffix(r.URL.Path, "/missing.png") {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(head)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// newTestResolver 使用虚拟时钟：sleep 只推进时间，不真正等待。
func newTestResolver(t *testing.T, up Uploads, hc *http.Client, opts Options) (*Resolver, *cache.AssetCache) {
	t.Helper()
	c := cache.Open(filepath.Join(t.TempDir(), cache.FileName), nil)
	r := New(c, up, hc, opts, nil)

	var mu sync.Mutex
	now := time.Unix(0, 0)
	r.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	r.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
		return nil
	}
	return r, c
}

func TestResolve_CacheHitSkipsNetwork(t *testing.T) {
	up := &fakeUploads{}
	srv, hits := newImageServer(t, pngHead)
	r, c := newTestResolver(t, up, srv.Client(), Options{})

	if err := c.Set(srv.URL+"/a.png?x=1", "cached-id"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	id, err := r.Resolve(context.Background(), srv.URL+"/a.png?x=2", "封面")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if id != "cached-id" {
		t.Fatalf("期望 cached-id，实际 %q", id)
	}
	if atomic.LoadInt32(hits) != 0 || up.listCalls != 0 || up.createCalls != 0 {
		t.Fatalf("缓存命中不应访问网络：hits=%d list=%d create=%d", atomic.LoadInt32(hits), up.listCalls, up.createCalls)
	}
}

func TestResolve_CatalogHitAcrossPages(t *testing.T) {
	up := &fakeUploads{listed: [][]notion.FileUpload{
		{{ID: "x", Filename: "别的.png", Status: notion.UploadUploaded}},
		{{ID: "bad", Filename: "封面.jpg", Status: notion.UploadFailed}, {ID: "stale", Filename: "封面.jpg", Status: notion.UploadPending}, {ID: "found", Filename: "封面.jpg", Status: notion.UploadUploaded}},
	}}
	srv, _ := newImageServer(t, jpegHead)
	r, c := newTestResolver(t, up, srv.Client(), Options{})

	id, err := r.Resolve(context.Background(), srv.URL+"/a.jpg", "封面")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if id != "found" {
		t.Fatalf("期望复用第二页的 found，实际 %q", id)
	}
	if up.listCalls != 2 || up.createCalls != 0 {
		t.Fatalf("期望遍历 2 页且不新建上传：list=%d create=%d", up.listCalls, up.createCalls)
	}
	if got, ok := c.Get(srv.URL + "/a.jpg"); !ok || got != "found" {
		t.Fatalf("命中远端列表后应写入缓存")
	}
}

func TestResolve_UploadAndPoll(t *testing.T) {
	up := &fakeUploads{statuses: []string{notion.UploadPending, "weird", notion.UploadUploaded}}
	srv, _ := newImageServer(t, pngHead)
	r, _ := newTestResolver(t, up, srv.Client(), Options{})

	id, err := r.Resolve(context.Background(), srv.URL+"/a.png", "某专辑")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if id != "fu-1" {
		t.Fatalf("期望 fu-1，实际 %q", id)
	}
	if up.retrieveCalls != 3 {
		t.Fatalf("未知状态应按 pending 继续轮询：retrieve=%d", up.retrieveCalls)
	}
	req := up.created[0]
	if req.Mode != "external_url" || req.Filename != "某专辑.png" || req.ExternalURL != srv.URL+"/a.png" {
		t.Fatalf("创建请求不符合预期：%+v", req)
	}
}

func TestResolve_SequentialDedup(t *testing.T) {
	up := &fakeUploads{}
	srv, _ := newImageServer(t, pngHead)
	r, _ := newTestResolver(t, up, srv.Client(), Options{})

	for i := 0; i < 2; i++ {
		id, err := r.Resolve(context.Background(), srv.URL+"/a.png?token=abc", "封面")
		if err != nil {
			t.Fatalf("第 %d 次不期望错误：%v", i+1, err)
		}
		if id != "fu-1" {
			t.Fatalf("第 %d 次期望 fu-1，实际 %q", i+1, id)
		}
	}
	if up.createCalls != 1 || up.listCalls != 1 {
		t.Fatalf("期望恰好 1 次上传与 1 次列表：create=%d list=%d", up.createCalls, up.listCalls)
	}
}

func TestResolve_UploadFailure(t *testing.T) {
	up := &fakeUploads{statuses: []string{notion.UploadFailed}, detail: "unsupported image"}
	srv, _ := newImageServer(t, pngHead)
	r, c := newTestResolver(t, up, srv.Client(), Options{})

	_, err := r.Resolve(context.Background(), srv.URL+"/a.png", "封面")
	var uf *UploadFailure
	if !errors.As(err, &uf) {
		t.Fatalf("期望 *UploadFailure，实际 %v", err)
	}
	if uf.Detail != "unsupported image" || uf.UploadID != "fu-1" {
		t.Fatalf("UploadFailure 不符合预期：%+v", uf)
	}
	if c.Len() != 0 {
		t.Fatalf("失败的上传不应写入缓存")
	}
}

func TestResolve_UploadTimeout(t *testing.T) {
	up := &fakeUploads{statuses: []string{notion.UploadPending}}
	srv, _ := newImageServer(t, pngHead)
	r, _ := newTestResolver(t, up, srv.Client(), Options{PollInterval: time.Second, MaxWait: 10 * time.Second})

	_, err := r.Resolve(context.Background(), srv.URL+"/a.png", "封面")
	if !IsTimeout(err) {
		t.Fatalf("期望 *UploadTimeout，实际 %v", err)
	}
	if up.retrieveCalls != 10 {
		t.Fatalf("期望轮询 10 次，实际 %d", up.retrieveCalls)
	}
}

func TestResolve_UpstreamFetchError(t *testing.T) {
	up := &fakeUploads{}
	srv, _ := newImageServer(t, pngHead)
	r, _ := newTestResolver(t, up, srv.Client(), Options{})

	_, err := r.Resolve(context.Background(), srv.URL+"/missing.png", "封面")
	var fe *UpstreamFetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("期望 404 的 *UpstreamFetchError，实际 %v", err)
	}
	if up.listCalls != 0 || up.createCalls != 0 {
		t.Fatalf("源图片不可读时不应访问 Notion")
	}
}

func TestResolve_EmptyURL(t *testing.T) {
	r, _ := newTestResolver(t, &fakeUploads{}, nil, Options{})
	if _, err := r.Resolve(context.Background(), "  ", "封面"); !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("期望 ErrEmptyURL，实际 %v", err)
	}
}

func TestResolve_ContextCancelAbortsPolling(t *testing.T) {
	up := &fakeUploads{statuses: []string{notion.UploadPending}}
	srv, _ := newImageServer(t, pngHead)
	r, _ := newTestResolver(t, up, srv.Client(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	r.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx(ctx, d)
	}
	_, err := r.Resolve(ctx, srv.URL+"/a.png", "封面")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("期望 context.Canceled，实际 %v", err)
	}
}

func TestResolve_DistinctURLsConcurrently(t *testing.T) {
	up := &fakeUploads{}
	srv, _ := newImageServer(t, pngHead)
	r, c := newTestResolver(t, up, srv.Client(), Options{})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), fmt.Sprintf("%s/%d.png", srv.URL, i), fmt.Sprintf("封面%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("不期望错误：%v", err)
		}
	}
	if c.Len() != 8 {
		t.Fatalf("期望缓存 8 条，实际 %d", c.Len())
	}
}

func TestResolve_CoalesceSameURL(t *testing.T) {
	up := &fakeUploads{}
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write(pngHead)
	}))
	t.Cleanup(srv.Close)
	r, _ := newTestResolver(t, up, srv.Client(), Options{Coalesce: true})

	const n = 5
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], _ = r.Resolve(context.Background(), srv.URL+"/a.png", "封面")
		}(i)
	}
	// 等待所有请求都进入合并组后再放行。
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if up.createCalls != 1 {
		t.Fatalf("合并模式下期望只上传一次，实际 %d", up.createCalls)
	}
	for i, id := range ids {
		if id != "fu-1" {
			t.Fatalf("第 %d 个请求期望 fu-1，实际 %q", i, id)
		}
	}
}

func TestResolve_CachePersistFailureStillReturnsID(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	c := cache.Open(filepath.Join(blocker, cache.FileName), nil)
	up := &fakeUploads{}
	srv, _ := newImageServer(t, pngHead)
	r := New(c, up, srv.Client(), Options{}, nil)

	id, err := r.Resolve(context.Background(), srv.URL+"/a.png", "封面")
	if err != nil {
		t.Fatalf("缓存落盘失败不应导致解析失败：%v", err)
	}
	if id != "fu-1" {
		t.Fatalf("期望 fu-1，实际 %q", id)
	}
	if got, ok := c.Get(srv.URL + "/a.png"); !ok || got != "fu-1" {
		t.Fatalf("内存缓存应保留该条目，实际 %q ok=%v", got, ok)
	}
}

func TestResolve_CoalesceCallerCancelDoesNotAbortOthers(t *testing.T) {
	up := &fakeUploads{}
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		_, _ = w.Write(pngHead)
	}))
	t.Cleanup(srv.Close)
	r, _ := newTestResolver(t, up, srv.Client(), Options{Coalesce: true})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, srv.URL+"/a.png", "封面")
		firstErr <- err
	}()
	<-entered

	second := make(chan string, 1)
	go func() {
		id, _ := r.Resolve(context.Background(), srv.URL+"/a.png", "封面")
		second <- id
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("被取消的调用方期望 context.Canceled，实际 %v", err)
	}
	close(release)
	if id := <-second; id != "fu-1" {
		t.Fatalf("其余调用方应拿到共享结果 fu-1，实际 %q", id)
	}
	if up.createCalls != 1 {
		t.Fatalf("期望只上传一次，实际 %d", up.createCalls)
	}
}
