// 包 wordcloud：把遮罩、口コミ文本与词云排布串成逐都道府県的批处理
package wordcloud

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"wordmap/internal/corpus"
	"wordmap/internal/layout"
	"wordmap/internal/logger"
	"wordmap/internal/mask"
	"wordmap/internal/metrics"
	"wordmap/internal/prefecture"
	"wordmap/internal/raster"
	"wordmap/internal/sink"
	"wordmap/internal/store"
	"wordmap/internal/tfidf"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Level：排布粒度
type Level int

const (
	// LevelMunicipality：每个市区町村一张遮罩，文本为单个文件
	LevelMunicipality Level = iota
	// LevelPrefecture：每个都道府県一张遮罩，文本为该都道府県全部文件
	LevelPrefecture
)

// ParseLevel：空串与 municipality 为 LevelMunicipality
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "municipality", "detail":
		return LevelMunicipality, nil
	case "prefecture":
		return LevelPrefecture, nil
	}
	return LevelMunicipality, fmt.Errorf("wordcloud: unknown level %q", s)
}

// Joiner：名词抽取并以空格拼接；*tokenize.Tokenizer 满足该接口
type Joiner interface {
	Joined(text string) string
}

// TermStore：词表得分镜像；*store.Store 满足该接口
type TermStore interface {
	ReplaceTermScores(ctx context.Context, runID uuid.UUID, pref, name string, scores []store.Score) error
}

// SinkFactory：按输出文件路径创建 sink；pref 为该路径对应的都道府県（都道府県级时为空值）
type SinkFactory func(pref prefecture.Prefecture, path string) (sink.Sink, error)

// JSONSinks：默认的 JSON 文件 sink
func JSONSinks(mode sink.Mode) SinkFactory {
	return func(_ prefecture.Prefecture, path string) (sink.Sink, error) {
		return sink.NewJSONFile(path, mode), nil
	}
}

const (
	DetailFile     = "wordcloud_layout_detail.json"
	PrefectureFile = "wordcloud_layout.json"
)

// Runner：一次词云排布批处理
type Runner struct {
	Level     Level
	MaskDir   string
	CorpusDir string
	OutDir    string
	// PreviewDir：非空时为每个区域写出预览 PNG
	PreviewDir string
	Tok        Joiner
	Stopwords  tfidf.Stopwords
	// MaxFeatures：0 取 tfidf.DefaultMaxFeatures
	MaxFeatures int
	Layout      layout.Config
	FontPath    string
	Sinks       SinkFactory
	Terms       TermStore
	RunID       uuid.UUID
	// Only：非空时只处理这些都道府県（键或日文名）
	Only    []string
	Workers int
	Log     *slog.Logger

	mu    sync.Mutex
	sinks map[string]sink.Sink
	// ordered：都道府県级结果按序号暂存，全部完成后依序写出
	ordered []*buffer
	sum     Summary
}

// Summary：处理汇总
type Summary struct {
	Prefectures int
	Regions     int
	Skipped     int
	Words       int
}

// job：一个区域的输入
type job struct {
	name     string
	maskPath string
	docs     []string
}

// 文档注释：逐都道府県排布并写出
// 背景：排布是纯 CPU 计算，都道府県之间互不依赖，按 Workers 并行；
// 每个都道府県持有自己的 Layouter（种子为 Layout.Seed + 序号）与字体度量，因此结果与并发度无关。
// 约束：缺文本、空遮罩、包围盒退化、没有可用词的区域只记录并跳过；sink 写出失败同样跳过；
// 都道府県级共用一个输出文件，记录按都道府県顺序写入；ctx 取消时返回 ctx 错误，已完成的结果仍会写出。
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if r.Log == nil {
		r.Log = logger.Component("wordcloud")
	}
	if r.Sinks == nil {
		r.Sinks = JSONSinks(sink.ModeUpsert)
	}
	prefs, err := r.prefectures()
	if err != nil {
		return Summary{}, err
	}
	r.sinks = map[string]sink.Sink{}
	r.ordered = make([]*buffer, len(prefs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Workers))
	for i, p := range prefs {
		i, p := i, p
		g.Go(func() error {
			return r.runPrefecture(gctx, i, p)
		})
	}
	err = g.Wait()
	r.flushOrdered(context.WithoutCancel(ctx))
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, s := range r.sinks {
		if cerr := s.Close(); cerr != nil {
			r.Log.Warn("sink_close_error", "path", path, "err", cerr)
		}
	}
	return r.sum, err
}

func (r *Runner) prefectures() ([]prefecture.Prefecture, error) {
	if len(r.Only) == 0 {
		return prefecture.All(), nil
	}
	var out []prefecture.Prefecture
	for _, s := range r.Only {
		p, ok := prefecture.ByKey(s)
		if !ok {
			p, ok = prefecture.ByName(s)
		}
		if !ok {
			return nil, fmt.Errorf("wordcloud: unknown prefecture %q", s)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Runner) runPrefecture(ctx context.Context, idx int, p prefecture.Prefecture) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := r.Log.With("prefecture", p.Name)
	jobs, outPath, err := r.jobs(p)
	if err != nil {
		log.Warn("wordcloud_input_missing", "err", err)
		r.skip(1, "input_missing")
		return nil
	}
	if len(jobs) == 0 {
		return nil
	}
	var s sink.Sink
	if r.Level == LevelPrefecture {
		b := &buffer{path: outPath}
		r.ordered[idx] = b
		s = b
	} else {
		s, err = r.openSink(p, outPath)
	}
	if err != nil {
		log.Warn("sink_open_error", "path", outPath, "err", err)
		r.skip(len(jobs), "sink_error")
		return nil
	}

	var measure layout.Measurer
	var faces layout.FaceSource
	if r.FontPath != "" {
		fm, err := layout.LoadFontMeasurer(r.FontPath)
		if err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		defer fm.Close()
		measure, faces = fm, fm
	}
	cfg := r.Layout
	cfg.Seed += int64(idx)
	lay := layout.New(cfg, measure)
	scorer := tfidf.NewScorer(r.Stopwords)
	if r.MaxFeatures > 0 {
		scorer.MaxFeatures = r.MaxFeatures
	}

	done := 0
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.region(ctx, p, j, lay, scorer, s, faces)
		if err != nil {
			log.Warn("wordcloud_region_skipped", "region", j.name, "err", err)
			continue
		}
		done++
		r.mu.Lock()
		r.sum.Regions++
		r.sum.Words += n
		r.mu.Unlock()
	}
	r.mu.Lock()
	r.sum.Prefectures++
	r.mu.Unlock()
	log.Info("wordcloud_prefecture_done", "regions", done, "of", len(jobs))
	return nil
}

// jobs：收集一个都道府県的全部区域输入
func (r *Runner) jobs(p prefecture.Prefecture) ([]job, string, error) {
	if r.Level == LevelPrefecture {
		c, err := corpus.Load(r.CorpusDir, p.Key)
		if err != nil {
			return nil, "", err
		}
		docs := make([]string, len(c.Docs))
		for i, d := range c.Docs {
			docs[i] = r.Tok.Joined(d.Text)
		}
		j := job{name: p.Name, maskPath: filepath.Join(r.MaskDir, p.Name+".png"), docs: docs}
		return []job{j}, filepath.Join(r.OutDir, PrefectureFile), nil
	}
	masks, err := filepath.Glob(filepath.Join(r.MaskDir, p.Name, "*.png"))
	if err != nil {
		return nil, "", err
	}
	sort.Strings(masks)
	var out []job
	for _, m := range masks {
		stem := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		textPath := filepath.Join(r.CorpusDir, p.Key, stem+".txt")
		raw, err := os.ReadFile(textPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				r.Log.Warn("text_missing", "prefecture", p.Name, "region", stem, "path", textPath)
				r.skip(1, "text_missing")
				continue
			}
			return nil, "", err
		}
		text, err := corpus.Decode(raw)
		if err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", textPath, err)
		}
		out = append(out, job{name: stem, maskPath: m, docs: []string{r.Tok.Joined(text)}})
	}
	return out, filepath.Join(r.OutDir, p.Name, DetailFile), nil
}

func (r *Runner) region(ctx context.Context, p prefecture.Prefecture, j job, lay *layout.Layouter, scorer *tfidf.Scorer, s sink.Sink, faces layout.FaceSource) (int, error) {
	start := time.Now()
	scores, err := scorer.Score(j.docs)
	if err != nil || len(scores) == 0 {
		r.skip(1, "no_terms")
		if err == nil {
			err = tfidf.ErrEmptyVocabulary
		}
		return 0, err
	}
	m, err := mask.Load(j.maskPath)
	if err != nil {
		r.skip(1, "mask_unreadable")
		return 0, err
	}
	bb, err := m.BBox()
	if err != nil {
		if errors.Is(err, mask.ErrEmptyMask) {
			r.Log.Warn("mask_empty", "prefecture", p.Name, "region", j.name, "path", j.maskPath)
		}
		r.skip(1, "mask_empty")
		return 0, err
	}
	placed := lay.Generate(scores, m)
	entries, err := layout.Normalize(placed, bb, tfidf.Scores(scores).Map())
	if err != nil {
		r.skip(1, "degenerate_bbox")
		return 0, err
	}
	if err := s.Put(ctx, layout.Record{Name: j.name, Data: entries}); err != nil {
		r.skip(1, "sink_error")
		return 0, err
	}
	if r.Terms != nil {
		ss := make([]store.Score, len(scores))
		for i, sc := range scores {
			ss[i] = store.Score{Word: sc.Word, Score: sc.Score}
		}
		if err := r.Terms.ReplaceTermScores(ctx, r.RunID, p.Name, j.name, ss); err != nil {
			r.Log.Warn("term_scores_error", "prefecture", p.Name, "region", j.name, "err", err)
		}
	}
	if r.PreviewDir != "" {
		path := filepath.Join(r.PreviewDir, p.Name, j.name+".png")
		if err := raster.WritePNG(path, layout.RenderPreview(m, placed, faces)); err != nil {
			r.Log.Warn("preview_write_error", "path", path, "err", err)
		}
	}
	metrics.RegionsProcessedTotal.WithLabelValues("layout").Inc()
	metrics.WordsPlacedTotal.Add(float64(len(placed)))
	metrics.LayoutDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	r.Log.Debug("wordcloud_region_done", "prefecture", p.Name, "region", j.name, "words", len(placed))
	return len(placed), nil
}

// openSink：同一输出路径只创建一次
func (r *Runner) openSink(p prefecture.Prefecture, path string) (sink.Sink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sinks[path]; ok {
		return s, nil
	}
	if r.Level == LevelPrefecture {
		p = prefecture.Prefecture{}
	}
	s, err := r.Sinks(p, path)
	if err != nil {
		return nil, err
	}
	r.sinks[path] = s
	return s, nil
}

// buffer：暂存一个都道府県的记录
type buffer struct {
	path string
	recs []layout.Record
}

func (b *buffer) Put(_ context.Context, rec layout.Record) error {
	b.recs = append(b.recs, rec)
	return nil
}

func (b *buffer) Close() error { return nil }

// flushOrdered：按都道府県序号把暂存记录写入共用 sink；写出失败的记录从成功数中扣除
func (r *Runner) flushOrdered(ctx context.Context) {
	for _, b := range r.ordered {
		if b == nil || len(b.recs) == 0 {
			continue
		}
		s, err := r.openSink(prefecture.Prefecture{}, b.path)
		if err != nil {
			r.Log.Warn("sink_open_error", "path", b.path, "err", err)
			r.unplace(len(b.recs))
			continue
		}
		for _, rec := range b.recs {
			if err := s.Put(ctx, rec); err != nil {
				r.Log.Warn("sink_put_error", "path", b.path, "region", rec.Name, "err", err)
				r.unplace(1)
			}
		}
	}
}

func (r *Runner) unplace(n int) {
	r.mu.Lock()
	r.sum.Regions -= n
	r.mu.Unlock()
	r.skip(n, "sink_error")
}

func (r *Runner) skip(n int, reason string) {
	metrics.RegionsSkippedTotal.WithLabelValues("layout", reason).Add(float64(n))
	r.mu.Lock()
	r.sum.Skipped += n
	r.mu.Unlock()
}
