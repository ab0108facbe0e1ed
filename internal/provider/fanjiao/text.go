package fanjiao

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText 把上游偶尔返回的 HTML 简介（<p>/<br>）还原成按行分隔的纯文本。
// 不含标签的文本原样返回：切分依赖原始换行位置，不能做任何空白归一化。
func PlainText(s string) string {
	if !looksLikeHTML(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	return strings.TrimRight(doc.Text(), "\n")
}

func looksLikeHTML(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "<br") || strings.Contains(l, "<p") || strings.Contains(l, "</p>") || strings.Contains(l, "<div")
}
