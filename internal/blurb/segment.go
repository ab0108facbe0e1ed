// Package blurb 把饭角专辑简介切分为“正文 + 补充信息”，并从补充信息中抽取出品方、标签与集数。
//
// 约束：
// - 所有函数都是纯函数（无 I/O、无隐藏状态）
// - 从不返回错误：结构缺失时按文档约定降级（整段视为正文、出品方 "undefined"、空标签、0 集）
package blurb

import (
	"strings"
	"unicode/utf8"
)

// CreditsMarker 是 provider 固定用来引出剧目标识的短语（例如 “古风百合广播剧《落音记》”）。
const CreditsMarker = "广播剧《"

// Segment 把原始简介切分为 (正文, 补充信息)。
//
// 规则（固定）：
// 1) 找到第一个 CreditsMarker；不存在 => (text, "")
// 2) 从该位置向前找最近的换行；不存在 => (text, "")
// 3) 换行之前（去掉换行以及紧邻它的一个字符）为正文；换行之后为补充信息
func Segment(text string) (mainText, supplemental string) {
	start := strings.Index(text, CreditsMarker)
	if start == -1 {
		return text, ""
	}

	nl := strings.LastIndex(text[:start], "\n")
	if nl == -1 {
		return text, ""
	}

	head := text[:nl]
	if head != "" {
		_, size := utf8.DecodeLastRuneInString(head)
		head = head[:len(head)-size]
	}
	return head, text[nl+1:]
}
