package wordlist

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"wordmap/internal/corpus"
	"wordmap/internal/metrics"
	"wordmap/internal/prefecture"
	"wordmap/internal/tfidf"
	"wordmap/internal/tokenize"
)

// Collector：抽取名词并计入频次；*tokenize.Tokenizer 满足该接口
type Collector interface {
	NounsInto(text string, acc *tokenize.Accumulator) []string
}

// TermEntry：前端词表中的一个词
type TermEntry struct {
	Word  string  `json:"word"`
	Score float64 `json:"tfidf_score"`
}

// TermRecord：一个都道府県的词表
type TermRecord struct {
	Name string      `json:"name"`
	Data []TermEntry `json:"data"`
}

// Terms：都道府県级词表生成器
type Terms struct {
	Tok    Collector
	Scorer *tfidf.Scorer
	// Keep：名词过滤器，nil 表示只去掉单字
	Keep tokenize.Filter
	// Acc：非 nil 时累计全部名词频次，供挑选停用词候选
	Acc *tokenize.Accumulator
	Log *slog.Logger
}

// 文档注释：按都道府県计算多文档 TF-IDF 词表
// 背景：每个市区町村文件是一篇文档，得分为各文档归一化 TF-IDF 的平均值，前端据此给都道府県着色与检索。
// 约束：按 JIS 顺序遍历；没有文本的都道府県跳过；得分保留 6 位小数，顺序与打分结果一致。
func (t *Terms) Build(ctx context.Context, root string) ([]TermRecord, error) {
	keep := t.Keep
	if keep == nil {
		keep = func(s string) bool { return len([]rune(s)) > 1 }
	}
	out := []TermRecord{}
	for _, pref := range prefecture.All() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p, err := corpus.Load(root, pref.Key)
		if err != nil {
			if !errors.Is(err, corpus.ErrNoDocuments) {
				t.Log.Warn("corpus_load_error", "key", pref.Key, "err", err)
			}
			metrics.RegionsSkippedTotal.WithLabelValues("terms", "no_documents").Inc()
			continue
		}
		docs := make([]string, len(p.Docs))
		for i, d := range p.Docs {
			docs[i] = strings.Join(tokenize.Apply(t.Tok.NounsInto(d.Text, t.Acc), keep), " ")
		}
		scores, err := t.Scorer.Score(docs)
		if err != nil && !errors.Is(err, tfidf.ErrEmptyVocabulary) {
			t.Log.Warn("tfidf_error", "prefecture", pref.Name, "err", err)
			continue
		}
		rec := TermRecord{Name: pref.Name, Data: make([]TermEntry, len(scores))}
		for i, s := range scores {
			rec.Data[i] = TermEntry{Word: s.Word, Score: math.Round(s.Score*1e6) / 1e6}
		}
		out = append(out, rec)
		metrics.RegionsProcessedTotal.WithLabelValues("terms").Inc()
		t.Log.Info("terms_done", "prefecture", pref.Name, "docs", len(docs), "words", len(rec.Data))
	}
	return out, nil
}
