// 包 wordlist：生成前端用的地域词表与市区町村口コミ量排名
package wordlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"wordmap/internal/corpus"
	"wordmap/internal/metrics"
	"wordmap/internal/prefecture"
	"wordmap/internal/tfidf"
	"wordmap/internal/utils"
)

// Nouner：名词抽取；*tokenize.Tokenizer 满足该接口
type Nouner interface {
	Nouns(text string) []string
}

// Entry：一个名字及其得分表
type Entry struct {
	Name   string
	Scores tfidf.Scores
}

// Table：保持顺序的 {名字: 得分表} 对象
type Table []Entry

func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		v, err := e.Scores.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Builder：词表生成器
type Builder struct {
	Tok    Nouner
	Scorer *tfidf.Scorer
	Log    *slog.Logger
}

// 文档注释：为 root 下每个都道府県生成词表
// 背景：市区按原名、町村按所属郡合并后各自打分，写入 <out>/<都道府県名>.json；
// 同时对整县文本打分，汇总到 <out>/all.json。
// 约束：未知目录键与空目录记录告警后跳过；单个分组无可用词时输出空表；ctx 取消时立即返回。
func (b *Builder) Build(ctx context.Context, root, outDir string) (Table, error) {
	keys, err := corpus.ListKeys(root)
	if err != nil {
		return nil, err
	}
	var all Table
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		pref, ok := prefecture.ByKey(key)
		if !ok {
			b.Log.Warn("prefecture_unknown", "key", key)
			metrics.RegionsSkippedTotal.WithLabelValues("wordlist", "unknown_prefecture").Inc()
			continue
		}
		p, err := corpus.Load(root, key)
		if err != nil {
			b.Log.Warn("corpus_load_error", "key", key, "err", err)
			metrics.RegionsSkippedTotal.WithLabelValues("wordlist", "no_documents").Inc()
			continue
		}
		var table Table
		for _, g := range p.GroupForWordList() {
			table = append(table, Entry{Name: g.Name, Scores: b.score(g.Text)})
			metrics.RegionsProcessedTotal.WithLabelValues("wordlist").Inc()
		}
		path := filepath.Join(outDir, pref.Name+".json")
		if err := utils.WriteJSON(path, table, false); err != nil {
			return all, fmt.Errorf("write %s: %w", path, err)
		}
		all = append(all, Entry{Name: pref.Name, Scores: b.score(p.Joined())})
		b.Log.Info("wordlist_written", "prefecture", pref.Name, "groups", len(table), "path", path)
	}
	if err := utils.WriteJSON(filepath.Join(outDir, "all.json"), all, false); err != nil {
		return all, err
	}
	return all, nil
}

func (b *Builder) score(text string) tfidf.Scores {
	joined := strings.Join(b.Tok.Nouns(text), " ")
	scores, err := b.Scorer.Score([]string{joined})
	if err != nil && !errors.Is(err, tfidf.ErrEmptyVocabulary) {
		b.Log.Warn("tfidf_error", "err", err)
	}
	return tfidf.Scores(scores)
}

// RankEntry：序列化为 [都道府県, 市区町村, 名词数]
type RankEntry struct {
	Prefecture   string
	Municipality string
	Count        int
}

func (r RankEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Prefecture, r.Municipality, r.Count})
}

func (r *RankEntry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("wordlist: rank entry needs 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &r.Prefecture); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &r.Municipality); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &r.Count)
}

// 文档注释：按名词数给市区町村排名
// 背景：口コミ越多的地域越适合画词云，下游据此挑选要抽取的边界。
// 约束：按 JIS 顺序遍历存在的都道府県目录；含「郡」的名字合并到郡；名词数降序，同数保持遍历顺序。
func Rank(ctx context.Context, tok Nouner, root string, log *slog.Logger) ([]RankEntry, error) {
	var out []RankEntry
	for _, pref := range prefecture.All() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p, err := corpus.Load(root, pref.Key)
		if err != nil {
			if !errors.Is(err, corpus.ErrNoDocuments) {
				log.Warn("corpus_load_error", "key", pref.Key, "err", err)
			}
			continue
		}
		for _, g := range p.GroupForRanking() {
			out = append(out, RankEntry{
				Prefecture:   pref.Name,
				Municipality: g.Name,
				Count:        len(tok.Nouns(g.Text)),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}
