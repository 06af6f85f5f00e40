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

// 文档注释：都道府県级 TF-IDF 词表
// 背景：每个市区町村文本作为一篇文档，得分为文档间平均；前端据此给都道府県着色。
// 约束：TERMS_STRICT=true 时额外去掉纯平假名与纯数字；设置 STOPWORD_SUGGEST_OUTPUT 时
// 同时写出全体名词中频次最高的前 STOPWORD_SUGGEST_LIMIT 个词，作为停用词候选。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tok, err := tokenize.New()
	if err != nil {
		l.Error("tokenizer_init_error", "err", err)
		os.Exit(1)
	}
	scorer := tfidf.NewScorer(nil)
	scorer.MaxFeatures = utils.EnvInt("TFIDF_MAX_FEATURES", tfidf.DefaultMaxFeatures)
	t := &wordlist.Terms{Tok: tok, Scorer: scorer, Log: logger.Component("terms")}
	if utils.EnvBool("TERMS_STRICT", false) {
		t.Keep = tokenize.StrictFilter
	}
	suggest := utils.EnvString("STOPWORD_SUGGEST_OUTPUT", "")
	if suggest != "" {
		t.Acc = tokenize.NewAccumulator()
	}
	root := utils.EnvString("CORPUS_DIR", "create_wordcloud/tabelog_results")
	out := utils.EnvString("TERMS_OUTPUT", "wordcloud_term_scores.json")
	recs, err := t.Build(ctx, root)
	if err != nil {
		l.Error("terms_error", "err", err)
		os.Exit(1)
	}
	if err := utils.WriteJSON(out, recs, true); err != nil {
		l.Error("terms_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	if t.Acc != nil {
		top := t.Acc.Top(utils.EnvInt("STOPWORD_SUGGEST_LIMIT", tokenize.DefaultTopLimit))
		if err := utils.WriteJSON(suggest, top, true); err != nil {
			l.Error("stopword_suggest_write_error", "path", suggest, "err", err)
			os.Exit(1)
		}
		l.Info("stopword_suggest_written", "words", len(top), "path", suggest)
	}
	l.Info("terms_all_done", "prefectures", len(recs), "path", out)
	if err := metrics.Flush("term-scores"); err != nil {
		l.Warn("metrics_flush_error", "err", err)
	}
}
