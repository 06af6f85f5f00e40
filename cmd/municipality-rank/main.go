package main

import (
	"context"
	"os"
	"os/signal"
	"wordmap/internal/logger"
	"wordmap/internal/tokenize"
	"wordmap/internal/utils"
	"wordmap/internal/wordlist"

	"github.com/joho/godotenv"
)

// 文档注释：市区町村口コミ量排名
// 约束：输出 [[都道府県, 市区町村, 名词数], ...]，名词数降序，四空格缩进。
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
	root := utils.EnvString("CORPUS_DIR", "create_wordcloud/tabelog_results")
	out := utils.EnvString("RANK_OUTPUT", "create_wordcloud/result_fix.json")
	ranks, err := wordlist.Rank(ctx, tok, root, logger.Component("wordlist"))
	if err != nil {
		l.Error("rank_error", "err", err)
		os.Exit(1)
	}
	if err := utils.WriteJSON(out, ranks, true); err != nil {
		l.Error("rank_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	l.Info("rank_done", "entries", len(ranks), "path", out)
}
