// Package cache 提供封面图片的“源 URL => Notion file_upload id”持久化缓存。
package cache

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/fsx"
	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
)

// FileName 是缓存文件在 data_dir 下的固定名称。
const FileName = "cover_cache.json"

// AssetCache 是进程内唯一的封面缓存。
//
// 约束：
// - key 一律先 CanonicalURL 再读写（只差 query 的两个 URL 命中同一条目）
// - 读不加锁：读取的是原子替换的只读快照
// - 写由单把互斥锁串行化：复制快照 => 修改 => 整体落盘 => 发布新快照
// - 不提供跨进程安全（同一文件不应被多个进程同时写）
type AssetCache struct {
	path   string
	logger *logging.Logger

	mu      sync.Mutex
	entries atomic.Pointer[map[string]string]
}

// Open 从 path 加载缓存。
// 文件缺失或损坏不是致命错误：记录日志后以空缓存启动。
// path 为空时缓存只存在于内存中（测试与 dry-run 使用）。
func Open(path string, logger *logging.Logger) *AssetCache {
	c := &AssetCache{
		path:   strings.TrimSpace(path),
		logger: logging.OrNop(logger).Component("asset_cache"),
	}
	m := map[string]string{}

	if c.path != "" {
		loaded := map[string]string{}
		exists, err := fsx.ReadJSON(c.path, &loaded)
		switch {
		case err != nil:
			c.logger.Warn("failed to load cover cache, starting empty", "path", c.path, "error", err)
		case exists:
			m = loaded
			c.logger.Info("loaded cover cache", "path", c.path, "entries", len(m))
		}
	}

	c.entries.Store(&m)
	return c
}

// Path 返回缓存文件路径（可能为空）。
func (c *AssetCache) Path() string { return c.path }

// Get 按规范化 URL 查找 file_upload id（纯内存读取）。
func (c *AssetCache) Get(rawURL string) (string, bool) {
	key := CanonicalURL(rawURL)
	if key == "" {
		return "", false
	}
	id, ok := (*c.entries.Load())[key]
	return id, ok
}

// Set 写入（或覆盖）一条缓存并把完整映射落盘。
// 落盘失败时内存中的条目仍然生效，错误返回给调用方记录。
func (c *AssetCache) Set(rawURL, uploadID string) error {
	key := CanonicalURL(rawURL)
	if key == "" {
		return errors.New("cache: url 不能为空")
	}
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return errors.New("cache: upload id 不能为空")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := *c.entries.Load()
	next := make(map[string]string, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[key] = uploadID
	c.entries.Store(&next)

	if err := c.persist(next); err != nil {
		return fmt.Errorf("persist cover cache: %w", err)
	}
	c.logger.Info("cached cover", "url", key, "upload_id", uploadID)
	return nil
}

// All 返回全部条目的副本（调试用）。
func (c *AssetCache) All() map[string]string {
	cur := *c.entries.Load()
	out := make(map[string]string, len(cur))
	for k, v := range cur {
		out[k] = v
	}
	return out
}

// Len 返回条目数量。
func (c *AssetCache) Len() int { return len(*c.entries.Load()) }

// Clear 清空缓存并落盘（调试用）。
func (c *AssetCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	empty := map[string]string{}
	c.entries.Store(&empty)
	if err := c.persist(empty); err != nil {
		return fmt.Errorf("persist cover cache: %w", err)
	}
	c.logger.Info("cover cache cleared")
	return nil
}

func (c *AssetCache) persist(m map[string]string) error {
	if c.path == "" {
		return nil
	}
	return fsx.WriteJSONAtomic(c.path, m)
}

// CanonicalURL 去掉 URL 的 query 与 fragment，作为缓存 key。
// 无法解析的输入按原样截断 '?' 之后的部分。
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
