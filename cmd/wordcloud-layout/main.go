package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"wordmap/internal/layout"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/migrate"
	"wordmap/internal/prefecture"
	"wordmap/internal/sink"
	"wordmap/internal/store"
	"wordmap/internal/tfidf"
	"wordmap/internal/tokenize"
	"wordmap/internal/utils"
	"wordmap/internal/wordcloud"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// 文档注释：词云排布
// 背景：LAYOUT_LEVEL=municipality（默认）读取 <MASK_DIR>/<都道府県>/<市区町村>.png 与对应文本，
// 输出 <LAYOUT_OUT_DIR>/<都道府県>/wordcloud_layout_detail.json；LAYOUT_LEVEL=prefecture 读取
// <MASK_DIR>/<都道府県>.png 与整县文本，输出 <LAYOUT_OUT_DIR>/wordcloud_layout.json。
// 约束：LAYOUT_SINK=json|postgres|both；postgres 时自动建表并登记运行 ID，词表得分同步写入 term_scores；
// 默认 upsert，LAYOUT_SINK_MODE=append 保留旧的追加行为。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	level, err := wordcloud.ParseLevel(utils.EnvString("LAYOUT_LEVEL", "municipality"))
	if err != nil {
		l.Error("layout_level_invalid", "err", err)
		os.Exit(1)
	}
	mode, err := sink.ParseMode(utils.EnvString("LAYOUT_SINK_MODE", "upsert"))
	if err != nil {
		l.Error("layout_sink_mode_invalid", "err", err)
		os.Exit(1)
	}
	sw, err := tfidf.LayoutStopwords().WithFile(utils.EnvString("STOPWORDS_FILE", ""))
	if err != nil {
		l.Error("stopwords_load_error", "err", err)
		os.Exit(1)
	}
	tok, err := tokenize.New()
	if err != nil {
		l.Error("tokenizer_init_error", "err", err)
		os.Exit(1)
	}

	cfg := layout.DefaultConfig()
	cfg.MaxWords = utils.EnvInt("LAYOUT_MAX_WORDS", cfg.MaxWords)
	cfg.MinFontSize = utils.EnvInt("LAYOUT_MIN_FONT", cfg.MinFontSize)
	cfg.MaxFontSize = utils.EnvInt("LAYOUT_MAX_FONT", 0)
	cfg.Margin = utils.EnvInt("LAYOUT_MARGIN", cfg.Margin)
	cfg.PreferHorizontal = utils.EnvFloat("LAYOUT_PREFER_HORIZONTAL", cfg.PreferHorizontal)
	cfg.RelativeScaling = utils.EnvFloat("LAYOUT_RELATIVE_SCALING", cfg.RelativeScaling)
	cfg.Seed = utils.EnvInt64("LAYOUT_SEED", 0)

	r := &wordcloud.Runner{
		Level:       level,
		MaskDir:     utils.EnvString("MASK_DIR", defaultMaskDir(level)),
		CorpusDir:   utils.EnvString("CORPUS_DIR", "create_wordcloud/tabelog_results"),
		OutDir:      utils.EnvString("LAYOUT_OUT_DIR", defaultOutDir(level)),
		PreviewDir:  utils.EnvString("LAYOUT_PREVIEW_DIR", ""),
		Tok:         tok,
		Stopwords:   sw,
		MaxFeatures: utils.EnvInt("TFIDF_MAX_FEATURES", tfidf.DefaultMaxFeatures),
		Layout:      cfg,
		FontPath:    utils.EnvString("FONT_PATH", ""),
		Sinks:       wordcloud.JSONSinks(mode),
		Only:        utils.EnvList("LAYOUT_PREFECTURES"),
		Workers:     utils.EnvInt("LAYOUT_WORKERS", 1),
		Log:         logger.Component("wordcloud"),
	}

	var st *store.Store
	switch kind := strings.ToLower(utils.EnvString("LAYOUT_SINK", "json")); kind {
	case "json":
	case "postgres", "both":
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("db_migrate_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
		defer st.Close()
		runID, err := st.BeginRun(ctx, "wordcloud-layout")
		if err != nil {
			l.Error("db_run_begin_error", "err", err)
			os.Exit(1)
		}
		r.RunID, r.Terms = runID, st
		r.Sinks = postgresSinks(st, runID, kind == "both", mode)
	default:
		l.Error("layout_sink_invalid", "sink", kind)
		os.Exit(1)
	}

	sum, err := r.Run(ctx)
	if err != nil {
		l.Error("layout_error", "err", err)
		os.Exit(1)
	}
	if st != nil {
		if err := st.FinishRun(context.Background(), r.RunID); err != nil {
			l.Warn("db_run_finish_error", "err", err)
		}
	}
	l.Info("layout_done", "prefectures", sum.Prefectures, "regions", sum.Regions, "skipped", sum.Skipped, "words", sum.Words)
	if err := metrics.Flush("wordcloud-layout"); err != nil {
		l.Warn("metrics_flush_error", "err", err)
	}
}

func defaultMaskDir(level wordcloud.Level) string {
	if level == wordcloud.LevelPrefecture {
		return "prefecture_layer_closeup"
	}
	return "prefecture_layer"
}

func defaultOutDir(level wordcloud.Level) string {
	if level == wordcloud.LevelPrefecture {
		return "."
	}
	return "wordcloud_map_layer"
}

// postgresSinks：都道府県级记录以空 pref 入库
func postgresSinks(st *store.Store, runID uuid.UUID, withJSON bool, mode sink.Mode) wordcloud.SinkFactory {
	return func(p prefecture.Prefecture, path string) (sink.Sink, error) {
		pg := &sink.Postgres{Store: st, RunID: runID, Pref: p.Name}
		if !withJSON {
			return pg, nil
		}
		return sink.Multi{sink.NewJSONFile(path, mode), pg}, nil
	}
}
