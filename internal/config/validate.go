package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate 只检查“填了就必须合法”的字段；命令相关的必填项见 RequireFanjiao/RequireNotion。
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 超出范围：%d", c.Server.Port)
	}
	for _, f := range []struct{ name, v string }{
		{"fanjiao.album_url", c.Fanjiao.AlbumURL},
		{"fanjiao.cv_url", c.Fanjiao.CVURL},
		{"fanjiao.audio_url", c.Fanjiao.AudioURL},
		{"sync.album_link_base", c.Sync.AlbumLinkBase},
	} {
		if err := validateHTTPURL(f.name, f.v); err != nil {
			return err
		}
	}
	if c.Fanjiao.ProxyURL != "" {
		u, err := url.Parse(c.Fanjiao.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("fanjiao.proxy_url 无效：%q", c.Fanjiao.ProxyURL)
		}
	}
	if c.Assets.ImageProxy && c.Fanjiao.ProxyURL == "" {
		return fmt.Errorf("assets.image_proxy=true 但 fanjiao.proxy_url 为空")
	}
	if c.Assets.PollInterval > c.Assets.MaxWait {
		return fmt.Errorf("assets.poll_interval 不能大于 assets.max_wait")
	}
	switch c.Logging.Mode {
	case "", "development", "dev", "production", "prod":
	default:
		return fmt.Errorf("logging.mode 只能是 development 或 production，实际是 %q", c.Logging.Mode)
	}
	return nil
}

// RequireFanjiao 检查抓取专辑所需的字段；withAudio=true 时额外要求音频接口地址。
func (c Config) RequireFanjiao(withAudio bool) error {
	if strings.TrimSpace(c.Fanjiao.Salt) == "" {
		return &Error{Code: ErrCodeMissingField, Field: "fanjiao.salt (FANJIAO_SALT)"}
	}
	if c.Fanjiao.AlbumURL == "" {
		return &Error{Code: ErrCodeMissingField, Field: "fanjiao.album_url (FANJIAO_BASE_URL)"}
	}
	if c.Fanjiao.CVURL == "" {
		return &Error{Code: ErrCodeMissingField, Field: "fanjiao.cv_url (FANJIAO_CV_BASE_URL)"}
	}
	if withAudio && c.Fanjiao.AudioURL == "" {
		return &Error{Code: ErrCodeMissingField, Field: "fanjiao.audio_url (FANJIAO_AUDIO_BASE_URL)"}
	}
	return nil
}

// RequireNotion 检查访问 Notion 所需的字段。
func (c Config) RequireNotion() error {
	if strings.TrimSpace(c.Notion.Token) == "" {
		return &Error{Code: ErrCodeMissingField, Field: "notion.token (NOTION_TOKEN)"}
	}
	return nil
}

func validateHTTPURL(field, v string) error {
	if v == "" {
		return nil
	}
	u, err := url.Parse(v)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, v)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, v)
	}
	return nil
}
