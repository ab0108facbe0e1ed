package blurb

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/John-Robertt/YuriAudio2Notion/internal/domain"
)

// UndefinedProducer 是无法识别出品方时的默认值（Notion 的 select 不接受空名称）。
const UndefinedProducer = "undefined"

// producerRule 是出品方级联中的一条规则。
// RE2 不支持 lookahead：这里把标记词一起消费掉，只取第 1 个捕获组；
// 惰性量词 + 最左匹配保证捕获结果与“lookahead 写法”一致。
type producerRule struct {
	re        *regexp.Regexp
	firstItem bool // 只保留 “、” 分隔的第一项
}

// 顺序即优先级：先“制作出品/出品制作”组合标记，再单独的“制作”，最后“出品”；
// 每组内先匹配分隔符（，）之后的片段，再匹配字符串开头。
var producerRules = []producerRule{
	{re: regexp.MustCompile(`，([^，]+?)(?:制作出品|出品制作)`)},
	{re: regexp.MustCompile(`^(.+?)(?:制作出品|出品制作)`)},
	{re: regexp.MustCompile(`，([^，]+?)制作`), firstItem: true},
	{re: regexp.MustCompile(`^(.+?)制作`), firstItem: true},
	{re: regexp.MustCompile(`，([^，]+?)出品`), firstItem: true},
	{re: regexp.MustCompile(`^(.+?)出品`), firstItem: true},
}

// Producer 从补充信息中抽取出品方（up 主）名称。
// 未命中任何规则时返回 ("", false)，由调用方决定默认值。
func Producer(supplemental string) (string, bool) {
	for _, r := range producerRules {
		m := r.re.FindStringSubmatch(supplemental)
		if len(m) < 2 {
			continue
		}
		name := strings.TrimSpace(m[1])
		if r.firstItem {
			if i := strings.Index(name, "、"); i >= 0 {
				name = strings.TrimSpace(name[:i])
			}
		}
		return name, true
	}
	return "", false
}

var tagsRE = regexp.MustCompile(`，([^，]+?)` + regexp.QuoteMeta(CreditsMarker))

// impliedTag 是该 provider 所有作品都隐含的题材标签，作为标签没有区分度。
const impliedTag = "百合"

var completenessTags = []string{"全一季", "全一期"}

// Tags 抽取 “，” 与 CreditsMarker 之间的题材描述并切分为标签。
//
// 规则：
// - 去掉隐含题材与“全一季/全一期”
// - 剩余长度（按字符）为偶数：每 2 个字符一个标签；奇数：整体作为一个标签
// - 剩余为空或未命中：无标签
func Tags(supplemental string) []string {
	m := tagsRE.FindStringSubmatch(supplemental)
	if len(m) < 2 {
		return []string{}
	}

	s := strings.TrimSpace(m[1])
	s = strings.ReplaceAll(s, impliedTag, "")
	for _, t := range completenessTags {
		s = strings.ReplaceAll(s, t, "")
	}
	if s == "" {
		return []string{}
	}

	rs := []rune(s)
	const chunk = 2
	if len(rs)%chunk != 0 {
		return []string{s}
	}
	out := make([]string, 0, len(rs)/chunk)
	for i := 0; i < len(rs); i += chunk {
		out = append(out, string(rs[i:i+chunk]))
	}
	return out
}

var episodeRE = regexp.MustCompile(`正剧.*?(?:共\D*?)?([0-9０-９]+|[一二两三四五六七八九十]+)[集期，]`)

// cjkNumerals 是封闭的中文数字词表。
// 只做逐字相加（例如 “十二” => 12），不实现完整的中文数字语法。
var cjkNumerals = map[rune]int{
	'一': 1,
	'二': 2,
	'三': 3,
	'四': 4,
	'五': 5,
	'六': 6,
	'七': 7,
	'八': 8,
	'九': 9,
	'十': 10,
	'两': 2,
}

// EpisodeCount 从 “正剧…共N集/期” 片段中抽取正剧集数。
// 未命中返回 (0, false)；命中但含词表外字符时返回 (0, true)（不做部分求和）。
func EpisodeCount(supplemental string) (int, bool) {
	m := episodeRE.FindStringSubmatch(supplemental)
	if len(m) < 2 {
		return 0, false
	}
	num := m[1]

	if isDigits(num) {
		n, err := strconv.Atoi(width.Narrow.String(num))
		if err != nil || n < 0 {
			return 0, true
		}
		return n, true
	}

	return sumNumerals(num), true
}

// sumNumerals 按词表逐字求和；遇到词表外字符整体返回 0。
func sumNumerals(s string) int {
	total := 0
	for _, r := range s {
		v, ok := cjkNumerals[r]
		if !ok {
			return 0
		}
		total += v
	}
	return total
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !(r >= '０' && r <= '９') {
			return false
		}
	}
	return true
}

// Parse 对原始简介执行切分与抽取，并套用默认值策略。
func Parse(raw string) domain.ParsedDescription {
	mainText, supplemental := Segment(raw)

	producer, ok := Producer(supplemental)
	if !ok {
		producer = UndefinedProducer
	}
	episodes, _ := EpisodeCount(supplemental)

	return domain.ParsedDescription{
		MainText:         mainText,
		SupplementalText: supplemental,
		ProducerName:     producer,
		Tags:             Tags(supplemental),
		EpisodeCount:     episodes,
	}
}
