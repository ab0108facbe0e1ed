package main

import (
	"time"

	"github.com/John-Robertt/YuriAudio2Notion/internal/app/run"
	"github.com/John-Robertt/YuriAudio2Notion/internal/asset"
	"github.com/John-Robertt/YuriAudio2Notion/internal/config"
	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/cache"
	"github.com/John-Robertt/YuriAudio2Notion/internal/infra/httpx"
	"github.com/John-Robertt/YuriAudio2Notion/internal/logging"
	"github.com/John-Robertt/YuriAudio2Notion/internal/normalize"
	"github.com/John-Robertt/YuriAudio2Notion/internal/notion"
	"github.com/John-Robertt/YuriAudio2Notion/internal/provider/fanjiao"
)

const notionTimeout = 30 * time.Second

// buildProcessor 按配置组装完整的同步链路。
// withAudio=true 时要求配置音频接口（sync --audio）；serve 不强制，缺失时只有 /webhook-audio 会失败。
func buildProcessor(cfg config.Config, log *logging.Logger, withAudio bool) (*run.Processor, error) {
	if err := cfg.RequireFanjiao(withAudio); err != nil {
		return nil, err
	}
	if err := cfg.RequireNotion(); err != nil {
		return nil, err
	}

	metaHTTP, err := httpx.NewClient(httpx.Options{ProxyURL: cfg.Fanjiao.ProxyURL, Timeout: cfg.Fanjiao.Timeout})
	if err != nil {
		return nil, err
	}
	imageOpts := httpx.Options{Timeout: cfg.Fanjiao.Timeout, NoRetry: true}
	if cfg.Assets.ImageProxy {
		imageOpts.ProxyURL = cfg.Fanjiao.ProxyURL
	}
	imageHTTP, err := httpx.NewClient(imageOpts)
	if err != nil {
		return nil, err
	}
	notionHTTP, err := httpx.NewClient(httpx.Options{Timeout: notionTimeout, NoRetry: true})
	if err != nil {
		return nil, err
	}

	src := &fanjiao.Client{
		AlbumURL: cfg.Fanjiao.AlbumURL,
		CVURL:    cfg.Fanjiao.CVURL,
		AudioURL: cfg.Fanjiao.AudioURL,
		Salt:     cfg.Fanjiao.Salt,
		HTTP:     metaHTTP,
	}
	nc := notion.New(cfg.Notion.Token, notion.Options{
		Version:       cfg.Notion.Version,
		Icon:          cfg.Notion.Icon,
		RatePerSecond: cfg.Notion.RatePerSecond,
		HTTP:          notionHTTP,
	})
	resolver := asset.New(cache.Open(cfg.CachePath(), log), nc, imageHTTP, asset.Options{
		PollInterval: cfg.Assets.PollInterval,
		MaxWait:      cfg.Assets.MaxWait,
		Coalesce:     cfg.Assets.CoalesceUploads,
	}, log)

	return &run.Processor{
		Source: src,
		Pages:  nc,
		Assets: resolver,
		Normalize: normalize.Options{
			AlbumLinkBase: cfg.Sync.AlbumLinkBase,
			Platform:      cfg.Sync.Platform,
			Location:      cfg.Notion.Location,
		},
		TimeZone:    cfg.Notion.TimeZone,
		AlbumParent: notion.Parent{DataSourceID: cfg.Notion.DataSourceID},
		AudioParent: notion.Parent{DataSourceID: cfg.Notion.AudioDataSourceID},
		Logger:      log,
	}, nil
}
