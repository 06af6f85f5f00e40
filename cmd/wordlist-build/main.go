package main

import (
	"context"
	"os"
	"os/signal"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/tfidf"
	"wordmap/internal/tokenize"
	"wordmap/internal/utils"
	"wordmap/internal/wordlist"

	"github.com/joho/godotenv"
)

// 文档注释：生成前端检索用的地域词表
// 约束：STOPWORDS_FILE 中的词并入内置停用词；输出 <WORDLIST_OUT_DIR>/<都道府県>.json 与 all.json。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sw, err := tfidf.WordListStopwords().WithFile(utils.EnvString("STOPWORDS_FILE", ""))
	if err != nil {
		l.Error("stopwords_load_error", "err", err)
		os.Exit(1)
	}
	tok, err := tokenize.New()
	if err != nil {
		l.Error("tokenizer_init_error", "err", err)
		os.Exit(1)
	}
	scorer := tfidf.NewScorer(sw)
	scorer.MaxFeatures = utils.EnvInt("TFIDF_MAX_FEATURES", tfidf.DefaultMaxFeatures)
	b := &wordlist.Builder{Tok: tok, Scorer: scorer, Log: logger.Component("wordlist")}
	root := utils.EnvString("CORPUS_DIR", "create_wordcloud/tabelog_results")
	out := utils.EnvString("WORDLIST_OUT_DIR", "public/data/word_list")
	all, err := b.Build(ctx, root, out)
	if err != nil {
		l.Error("wordlist_build_error", "err", err)
		os.Exit(1)
	}
	l.Info("wordlist_build_done", "prefectures", len(all), "out", out)
	if err := metrics.Flush("wordlist-build"); err != nil {
		l.Warn("metrics_flush_error", "err", err)
	}
}
