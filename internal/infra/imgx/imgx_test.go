package imgx

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeSample(t *testing.T, enc func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := enc(&buf, img); err != nil {
		t.Fatalf("encode 失败：%v", err)
	}
	return buf.Bytes()
}

func TestSniff_RealImages(t *testing.T) {
	pngBytes := encodeSample(t, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) })
	jpgBytes := encodeSample(t, func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) })

	if got := Sniff(pngBytes[:SniffLen]); got != PNG {
		t.Fatalf("期望 PNG，实际 %q", got)
	}
	if got := Sniff(jpgBytes[:SniffLen]); got != JPEG {
		t.Fatalf("期望 JPEG，实际 %q", got)
	}
}

func TestSniff_DefaultPNG(t *testing.T) {
	for _, head := range [][]byte{nil, []byte("GIF89a"), {0xff, 0xd8}} {
		if got := Sniff(head); got != PNG {
			t.Fatalf("Sniff(%v)=%q 期望默认 PNG", head, got)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("落音记_cover", JPEG); got != "落音记_cover.jpg" {
		t.Fatalf("文件名不符合预期：%q", got)
	}
	if got := FileName("x", ""); got != "x.png" {
		t.Fatalf("空格式应回退 png：%q", got)
	}
}
