package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}

	c.Fanjiao.AlbumURL = strings.TrimSpace(c.Fanjiao.AlbumURL)
	c.Fanjiao.CVURL = strings.TrimSpace(c.Fanjiao.CVURL)
	c.Fanjiao.AudioURL = strings.TrimSpace(c.Fanjiao.AudioURL)
	c.Fanjiao.ProxyURL = strings.TrimSpace(c.Fanjiao.ProxyURL)

	var err error
	if c.Fanjiao.Timeout, err = parseDuration("fanjiao.timeout", c.Fanjiao.TimeoutRaw, defaultFanjiaoTimeout); err != nil {
		return err
	}
	if c.Assets.PollInterval, err = parseDuration("assets.poll_interval", c.Assets.PollIntervalRaw, defaultPollInterval); err != nil {
		return err
	}
	if c.Assets.MaxWait, err = parseDuration("assets.max_wait", c.Assets.MaxWaitRaw, defaultMaxWait); err != nil {
		return err
	}

	c.Notion.TimeZone = strings.TrimSpace(c.Notion.TimeZone)
	if c.Notion.TimeZone == "" {
		c.Notion.TimeZone = defaultTimeZone
	}
	loc, err := time.LoadLocation(c.Notion.TimeZone)
	if err != nil {
		return fmt.Errorf("notion.time_zone 无效：%q", c.Notion.TimeZone)
	}
	c.Notion.Location = loc
	if c.Notion.RatePerSecond <= 0 {
		c.Notion.RatePerSecond = defaultRatePerSecond
	}

	// 范围 [1, 32]；超出截断。
	if c.Sync.Concurrency == 0 {
		c.Sync.Concurrency = DefaultConcurrency
	}
	if c.Sync.Concurrency < 1 {
		c.Sync.Concurrency = 1
	}
	if c.Sync.Concurrency > 32 {
		c.Sync.Concurrency = 32
	}

	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	c.DataDir = filepath.Clean(c.DataDir)

	c.Logging.Mode = strings.ToLower(strings.TrimSpace(c.Logging.Mode))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return nil
}

func parseDuration(field, raw, def string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s 无效：%w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s 必须大于 0：%q", field, raw)
	}
	return d, nil
}
