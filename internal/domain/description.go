package domain

// ParsedDescription 是从专辑简介中切分、抽取出的结构化结果。
//
// 约束：
// - 只由原始简介决定（纯函数产物，无 I/O、无隐藏状态）
// - 创建后不再修改
type ParsedDescription struct {
	MainText         string
	SupplementalText string

	// ProducerName 在无法识别时为 "undefined"（见 blurb.UndefinedProducer）。
	ProducerName string
	Tags         []string
	EpisodeCount int
}
