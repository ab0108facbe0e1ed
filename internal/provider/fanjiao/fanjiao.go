// Package fanjiao 实现饭角（rela.me）开放接口的签名请求与响应解码。
package fanjiao

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	providerx "github.com/John-Robertt/YuriAudio2Notion/internal/provider"
)

// Origin 是上游校验的来源站点；请求必须携带。
const Origin = "https://www.rela.me"

// 响应体上限（专辑详情通常只有几十 KB）。
const maxBodyBytes = 8 << 20

// Client 实现 provider.Source。
//
// 约束：
// - 每个请求都带 signature=md5(query+salt)；query 必须与实际发送的原文完全一致
// - 只负责“拼请求 + 解析响应”；UA/Origin/重试由 httpx 注入的 client 负责
type Client struct {
	AlbumURL string
	CVURL    string
	AudioURL string
	Salt     string

	HTTP *http.Client
}

func (*Client) Name() string { return "fanjiao" }

// Sign 返回 query 的签名（十六进制小写 md5）。
func Sign(query, salt string) string {
	sum := md5.Sum([]byte(query + salt))
	return hex.EncodeToString(sum[:])
}

// AlbumQuery / CVQuery / AudioQuery 是各接口的签名原文。
func AlbumQuery(albumID string) string { return "album_id=" + albumID + "&audio_id=" }
func CVQuery(albumID string) string    { return "album_id=" + albumID + "&from=H5" }
func AudioQuery(albumID string) string { return "album_id=" + albumID }

func (c *Client) FetchAlbum(ctx context.Context, albumID string) (providerx.Album, error) {
	var a providerx.Album
	if err := c.get(ctx, c.AlbumURL, AlbumQuery(albumID), &a); err != nil {
		return providerx.Album{}, err
	}
	a.Description = PlainText(a.Description)
	return a, nil
}

func (c *Client) FetchCVList(ctx context.Context, albumID string) ([]providerx.CV, error) {
	var data struct {
		CVList []providerx.CV `json:"cv_list"`
	}
	if err := c.get(ctx, c.CVURL, CVQuery(albumID), &data); err != nil {
		return nil, err
	}
	return data.CVList, nil
}

func (c *Client) FetchAudios(ctx context.Context, albumID string) ([]providerx.Audio, error) {
	var data struct {
		AudiosList []providerx.Audio `json:"audios_list"`
	}
	if err := c.get(ctx, c.AudioURL, AudioQuery(albumID), &data); err != nil {
		return nil, err
	}
	for i := range data.AudiosList {
		data.AudiosList[i].Description = PlainText(data.AudiosList[i].Description)
	}
	return data.AudiosList, nil
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, base, query string, out any) error {
	if c.HTTP == nil {
		return errors.New("http client 不能为空")
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return errors.New("接口地址未配置")
	}
	if _, err := url.Parse(base); err != nil {
		return fmt.Errorf("接口地址无效：%w", err)
	}

	u := base + "?" + query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("signature", Sign(query, c.Salt))
	if req.Header.Get("Origin") == "" {
		req.Header.Set("Origin", Origin)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &providerx.HTTPStatusError{URL: base, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("响应不是合法 JSON：%w", err)
	}
	// data 缺失即视为失败，code/msg 作为原因。
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &providerx.APIError{URL: base, Code: env.Code, Message: env.Msg}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("解析 data 失败：%w", err)
	}
	return nil
}
