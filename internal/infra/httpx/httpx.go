// Package httpx 集中上游 HTTP 访问策略（UA 池、默认请求头、代理、有界重试、总超时）。
package httpx

import (
	"errors"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultRetryMax = 2
)

// Transport 把“UA 池 + 默认请求头 + 代理 + 有界重试”固化为统一策略。
//
// 设计目标：上游客户端只负责“拼请求 + 解析响应”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	ua *uaPool

	// Header 中的值只在请求未显式设置同名头时补上。
	Header http.Header

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := req.Clone(req.Context())
		for k, vs := range t.Header {
			if r.Header.Get(k) == "" {
				for _, v := range vs {
					r.Header.Add(k, v)
				}
			}
		}
		if r.Header.Get("User-Agent") == "" && t.ua != nil {
			r.Header.Set("User-Agent", t.ua.random())
		}
		if t.DisableKeepAlives {
			r.Close = true
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试，直接返回最后错误。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Options 描述一个 client 的网络策略。
type Options struct {
	// ProxyURL 非空时所有请求走代理，且禁用 keep-alive（代理池轮换依赖该行为）。
	ProxyURL string
	// Header 是默认请求头（例如 Origin）。
	Header http.Header
	// Timeout 为 0 时使用默认总超时。
	Timeout time.Duration
	// FixedUA 非空时不使用随机 UA 池。
	FixedUA string
	// NoRetry=true 时传输层错误直接返回，不做重试。
	NoRetry bool
}

// NewClient 按 Options 构造 HTTP client。
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		MaxIdleConnsPerHost:   4,
	}

	disableKeepAlives := false
	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	h := opts.Header.Clone()
	if opts.FixedUA != "" {
		if h == nil {
			h = http.Header{}
		}
		h.Set("User-Agent", opts.FixedUA)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retryMax := defaultRetryMax
	if opts.NoRetry {
		retryMax = 0
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			ua:                globalUA,
			Header:            h,
			RetryMax:          retryMax,
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: timeout,
	}, nil
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = newUAPool()

func newUAPool() *uaPool {
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	}
	return &uaPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}
