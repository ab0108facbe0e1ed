// Package imgx 通过文件头魔数识别图片格式（用于确定上传文件名的扩展名）。
package imgx

import "bytes"

// Format 是识别出的图片格式。
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
)

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// SniffLen 是识别格式需要读取的最少字节数。
const SniffLen = 16

// Sniff 根据文件头识别格式。
//
// 约束：
// - 只识别 PNG 与 JPEG 两种签名
// - 都不匹配时默认 PNG（provider 的封面绝大多数是 PNG）
func Sniff(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, pngMagic):
		return PNG
	case bytes.HasPrefix(head, jpegMagic):
		return JPEG
	default:
		return PNG
	}
}

// Ext 返回不带点的扩展名。
func (f Format) Ext() string {
	if f == "" {
		return string(PNG)
	}
	return string(f)
}

// FileName 组合上传文件名：<name>.<ext>。
func FileName(name string, f Format) string {
	return name + "." + f.Ext()
}
