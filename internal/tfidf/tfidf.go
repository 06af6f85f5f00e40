// 包 tfidf：对名词文档集打分，产出按得分排序的词表
package tfidf

import (
	"errors"
	"math"
	"slices"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/james-bowman/nlp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxFeatures：词表上限
const DefaultMaxFeatures = 200

// ErrEmptyVocabulary：所有文档都没有可用的词
var ErrEmptyVocabulary = errors.New("tfidf: empty vocabulary")

var reWord = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// wordTokeniser：两个字符以上的词，统一小写；实现 nlp.Tokeniser
type wordTokeniser struct{}

func (wordTokeniser) ForEachIn(text string, fn func(string)) {
	for _, w := range reWord.FindAllString(text, -1) {
		fn(strings.ToLower(w))
	}
}

func (t wordTokeniser) Tokenise(text string) []string {
	var out []string
	t.ForEachIn(text, func(w string) { out = append(out, w) })
	return out
}

// TermScore：一个词及其在文档集上的平均 TF-IDF
type TermScore struct {
	Word  string
	Score float64
}

// Scorer：零值表示不截断词表、不过滤停用词
type Scorer struct {
	MaxFeatures int
	Stopwords   Stopwords
}

func NewScorer(stop Stopwords) *Scorer {
	return &Scorer{MaxFeatures: DefaultMaxFeatures, Stopwords: stop}
}

// 文档注释：计算文档集的平均 TF-IDF
// 背景：每个文档是空格分隔的名词串；先按全体词频截取前 MaxFeatures 个词，
// 再以平滑 IDF ln((1+n)/(1+df))+1 加权，逐文档做 L2 归一化后对文档取平均。
// 约束：全部文档为空时返回空结果，个别空文档照常参与计数；停用词与纯数字在打分之后剔除，因此结果可能少于 MaxFeatures；
// 排序为得分降序，同分按词的字典序。
func (s *Scorer) Score(docs []string) ([]TermScore, error) {
	if !slices.ContainsFunc(docs, func(d string) bool { return d != "" }) {
		return nil, nil
	}
	vec := nlp.NewCountVectoriser()
	vec.Tokeniser = wordTokeniser{}
	vec.Fit(docs...)
	if len(vec.Vocabulary) == 0 {
		return nil, ErrEmptyVocabulary
	}
	terms := s.limitFeatures(docs, vec.Vocabulary)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	vec.Vocabulary = vocab

	counts, err := vec.Transform(docs...)
	if err != nil {
		return nil, err
	}
	nTerms, nDocs := len(terms), len(docs)
	weights := mat.NewDense(nTerms, nDocs, nil)
	df := make([]float64, nTerms)
	for i := 0; i < nTerms; i++ {
		for j := 0; j < nDocs; j++ {
			c := counts.At(i, j)
			weights.Set(i, j, c)
			if c > 0 {
				df[i]++
			}
		}
	}
	for i := range df {
		idf := logSmooth(float64(nDocs), df[i])
		row := weights.RawRowView(i)
		floats.Scale(idf, row)
	}
	col := make([]float64, nTerms)
	for j := 0; j < nDocs; j++ {
		mat.Col(col, j, weights)
		if n := floats.Norm(col, 2); n > 0 {
			floats.Scale(1/n, col)
			weights.SetCol(j, col)
		}
	}

	out := make([]TermScore, 0, nTerms)
	for i, t := range terms {
		if s.Stopwords.Has(t) || isDigits(t) {
			continue
		}
		mean := floats.Sum(weights.RawRowView(i)) / float64(nDocs)
		out = append(out, TermScore{Word: t, Score: mean})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Word < out[b].Word
	})
	return out, nil
}

// limitFeatures：按全体词频取前 MaxFeatures 个词（同频按字典序），返回按字典序排列的词
func (s *Scorer) limitFeatures(docs []string, vocab map[string]int) []string {
	freq := make(map[string]int, len(vocab))
	tok := wordTokeniser{}
	for _, d := range docs {
		tok.ForEachIn(d, func(w string) { freq[w]++ })
	}
	terms := make([]string, 0, len(vocab))
	for t := range vocab {
		terms = append(terms, t)
	}
	limit := s.MaxFeatures
	if limit > 0 && len(terms) > limit {
		sort.Slice(terms, func(a, b int) bool {
			if freq[terms[a]] != freq[terms[b]] {
				return freq[terms[a]] > freq[terms[b]]
			}
			return terms[a] < terms[b]
		})
		terms = terms[:limit]
	}
	sort.Strings(terms)
	return terms
}

func logSmooth(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Lookup：按词查找得分；不存在返回 0
func Lookup(scores []TermScore, word string) float64 {
	for _, ts := range scores {
		if ts.Word == word {
			return ts.Score
		}
	}
	return 0
}
