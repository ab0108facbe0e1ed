package httpx

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNewClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !tr.Base.DisableKeepAlives || !tr.DisableKeepAlives {
		t.Fatalf("代理模式应禁用 keep-alive")
	}
}

func TestNewClient_NoProxyKeepsDefault(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr := c.Transport.(*Transport)
	if tr.Base.Proxy != nil {
		t.Fatalf("不期望启用代理，但 Proxy!=nil")
	}
	if tr.Base.DisableKeepAlives {
		t.Fatalf("不期望禁用 keep-alive")
	}
	if c.Timeout != defaultTimeout {
		t.Fatalf("期望默认超时 %v，实际 %v", defaultTimeout, c.Timeout)
	}
}

func TestNewClient_InvalidProxyURL(t *testing.T) {
	if _, err := NewClient(Options{ProxyURL: "http://[::1"}); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if _, err := NewClient(Options{ProxyURL: "127.0.0.1:8080"}); err == nil {
		t.Fatalf("缺少 scheme 的代理地址应报错")
	}
}

func TestTransport_DefaultHeadersDoNotOverride(t *testing.T) {
	var gotOrigin, gotUA, gotCustom atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin.Store(r.Header.Get("Origin"))
		gotUA.Store(r.Header.Get("User-Agent"))
		gotCustom.Store(r.Header.Get("X-Test"))
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("Origin", "https://www.rela.me")
	h.Set("X-Test", "default")
	c, err := NewClient(Options{Header: h})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("X-Test", "explicit")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("请求失败：%v", err)
	}
	resp.Body.Close()

	if gotOrigin.Load() != "https://www.rela.me" {
		t.Fatalf("默认 Origin 未生效：%v", gotOrigin.Load())
	}
	if gotCustom.Load() != "explicit" {
		t.Fatalf("显式请求头不应被覆盖：%v", gotCustom.Load())
	}
	if ua, _ := gotUA.Load().(string); ua == "" {
		t.Fatalf("期望自动补充 User-Agent")
	}
	if req.Header.Get("Origin") != "" {
		t.Fatalf("不应污染调用方的 request")
	}
}

// 每个连接一接受就关闭，模拟上游瞬断。
func newDroppingListener(t *testing.T) (addr string, accepts *int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("监听失败：%v", err)
	}
	t.Cleanup(func() { ln.Close() })
	var n int32
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			atomic.AddInt32(&n, 1)
			conn.Close()
		}
	}()
	return "http://" + ln.Addr().String(), &n
}

func TestTransport_RetriesGetOnError(t *testing.T) {
	addr, accepts := newDroppingListener(t)
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, addr, nil)
	if _, err := c.Do(req); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if got := atomic.LoadInt32(accepts); got < int32(defaultRetryMax+1) {
		t.Fatalf("GET 期望至少 %d 次尝试，实际 %d", defaultRetryMax+1, got)
	}
}

func TestTransport_DoesNotRetryPost(t *testing.T) {
	addr, accepts := newDroppingListener(t)
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, addr, strings.NewReader("{}"))
	if _, err := c.Do(req); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if got := atomic.LoadInt32(accepts); got != 1 {
		t.Fatalf("POST 不应重试，实际连接次数 %d", got)
	}
}

func TestTransport_NoRetryGet(t *testing.T) {
	addr, accepts := newDroppingListener(t)
	c, err := NewClient(Options{NoRetry: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, addr, nil)
	if _, err := c.Do(req); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
	if got := atomic.LoadInt32(accepts); got != 1 {
		t.Fatalf("NoRetry 时 GET 不应重试，实际连接次数 %d", got)
	}
}
