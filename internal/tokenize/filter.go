package tokenize

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

var reHiragana = regexp.MustCompile(`^[ぁ-ゖ]+$`)

// Filter：返回 true 表示保留
type Filter func(string) bool

// StrictFilter：词云预览用，去掉单字、纯平假名与纯数字
func StrictFilter(tok string) bool {
	if utf8.RuneCountInString(tok) == 1 {
		return false
	}
	if reHiragana.MatchString(tok) {
		return false
	}
	return !isDecimal(tok)
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.Is(unicode.Nd, r) {
			return false
		}
	}
	return true
}

// Apply：按过滤器筛选，保持顺序
func Apply(tokens []string, keep Filter) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Accumulator：跨文档的词频统计，用于挑选高频停用词候选
// 约束：非并发安全，由调用方在单个 goroutine 中使用。
type Accumulator struct {
	counts map[string]int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{counts: map[string]int{}}
}

func (a *Accumulator) Add(words ...string) {
	for _, w := range words {
		a.counts[w]++
	}
}

func (a *Accumulator) Count(word string) int { return a.counts[word] }

func (a *Accumulator) Len() int { return len(a.counts) }

// Top：频次降序的前 n 个词，同频按字典序
func (a *Accumulator) Top(n int) []string {
	words := make([]string, 0, len(a.counts))
	for w := range a.counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		ci, cj := a.counts[words[i]], a.counts[words[j]]
		if ci != cj {
			return ci > cj
		}
		return words[i] < words[j]
	})
	if n >= 0 && len(words) > n {
		words = words[:n]
	}
	return words
}

// DefaultTopLimit：停用词候选的默认数量
const DefaultTopLimit = 100
