package config

import (
	"strconv"
	"strings"
)

// applyEnv 用环境变量覆盖部署相关与密钥类字段（环境变量优先于配置文件）。
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("FANJIAO_SALT", &c.Fanjiao.Salt)
	str("FANJIAO_BASE_URL", &c.Fanjiao.AlbumURL)
	str("FANJIAO_CV_BASE_URL", &c.Fanjiao.CVURL)
	str("FANJIAO_AUDIO_BASE_URL", &c.Fanjiao.AudioURL)
	str("NOTION_TOKEN", &c.Notion.Token)
	str("NOTION_DATA_SOURCE_ID", &c.Notion.DataSourceID)
	str("NOTION_AUDIO_DATA_SOURCE_ID", &c.Notion.AudioDataSourceID)
	str("API_KEY", &c.Server.APIKey)
	str("HOST", &c.Server.Host)
	str("DATA_DIR", &c.DataDir)

	if v, ok := lookup("PORT"); ok {
		if p, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Server.Port = p
		}
	}
	if v, ok := lookup("ENV"); ok && strings.TrimSpace(v) != "" {
		c.Logging.Mode = strings.TrimSpace(v)
	}
}
