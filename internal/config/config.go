package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/cache"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingField 表示某个命令需要的字段没有配置（文件与环境变量都没有）。
	ErrCodeMissingField = "config_missing_field"
)

// FileName 是未显式指定时在当前目录查找的配置文件名。
const FileName = "yuriaudio.toml"

// Config 是合并（默认值 => 配置文件 => 环境变量）并规范化后的最终配置。
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Fanjiao FanjiaoConfig `toml:"fanjiao"`
	Notion  NotionConfig  `toml:"notion"`
	Assets  AssetsConfig  `toml:"assets"`
	Sync    SyncConfig    `toml:"sync"`
	Logging LoggingConfig `toml:"logging"`

	// DataDir 存放封面缓存与 serve 的进程锁。
	DataDir string `toml:"data_dir"`
}

type ServerConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
}

type FanjiaoConfig struct {
	AlbumURL string `toml:"album_url"`
	CVURL    string `toml:"cv_url"`
	AudioURL string `toml:"audio_url"`
	Salt     string `toml:"salt"`
	ProxyURL string `toml:"proxy_url"`

	TimeoutRaw string        `toml:"timeout"`
	Timeout    time.Duration `toml:"-"`
}

type NotionConfig struct {
	Token             string  `toml:"token"`
	DataSourceID      string  `toml:"data_source_id"`
	AudioDataSourceID string  `toml:"audio_data_source_id"`
	Version           string  `toml:"version"`
	RatePerSecond     float64 `toml:"rate_per_second"`
	TimeZone          string  `toml:"time_zone"`
	Icon              string  `toml:"icon"`

	// Location 由 TimeZone 解析得到。
	Location *time.Location `toml:"-"`
}

type AssetsConfig struct {
	PollIntervalRaw string        `toml:"poll_interval"`
	PollInterval    time.Duration `toml:"-"`
	MaxWaitRaw      string        `toml:"max_wait"`
	MaxWait         time.Duration `toml:"-"`

	// CoalesceUploads=true 时合并同一图片的并发解析。
	CoalesceUploads bool `toml:"coalesce_uploads"`
	// ImageProxy=true 时探测图片格式也走 fanjiao.proxy_url。
	ImageProxy bool `toml:"image_proxy"`
}

type SyncConfig struct {
	Concurrency   int    `toml:"concurrency"`
	AlbumLinkBase string `toml:"album_link_base"`
	Platform      string `toml:"platform"`
}

type LoggingConfig struct {
	// Mode: development / production（ENV=production 等价于 production）。
	Mode  string `toml:"mode"`
	Level string `toml:"level"`
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code  string
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingField:
		return fmt.Sprintf("%s：缺少必填配置 %s", e.Code, e.Field)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Load 发现并读取配置文件，叠加环境变量后规范化、校验。
//
// 发现规则（固定）：
// 1) path 非空：必须存在
// 2) path 为空：读取 ./yuriaudio.toml（可选），不存在时只用默认值 + 环境变量
//
// 返回值 resolved 是实际读取的文件路径（未读取文件时为空）。
func Load(path string) (cfg Config, resolved string, err error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, string, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return Config{}, "", err
	}
	if exists {
		b, err := os.ReadFile(resolved)
		if err != nil {
			return Config{}, "", &Error{Code: ErrCodeInvalid, Path: resolved, Err: err}
		}
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, "", &Error{Code: ErrCodeInvalid, Path: resolved, Err: err}
		}
	} else {
		resolved = ""
	}

	cfg.applyEnv(lookup)

	if err := cfg.normalize(); err != nil {
		return Config{}, "", &Error{Code: ErrCodeInvalid, Path: resolved, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", &Error{Code: ErrCodeInvalid, Path: resolved, Err: err}
	}
	return cfg, resolved, nil
}

func resolvePath(path string) (string, bool, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", false, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
		if _, err := os.Stat(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, &Error{Code: ErrCodeNotFound, Path: abs, Err: err}
			}
			return "", false, &Error{Code: ErrCodeInvalid, Path: abs, Err: err}
		}
		return abs, true, nil
	}

	abs, err := filepath.Abs(FileName)
	if err != nil {
		return "", false, nil
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return abs, true, nil
	}
	return "", false, nil
}

// CachePath 是封面缓存文件的位置。
func (c Config) CachePath() string { return filepath.Join(c.DataDir, cache.FileName) }

// LockPath 是 serve 的单实例锁文件。
func (c Config) LockPath() string { return filepath.Join(c.DataDir, "yuriaudio.lock") }

// Addr 是 serve 的监听地址。
func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port) }
