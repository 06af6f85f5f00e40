package main

import (
	"os"
	"wordmap/internal/cooccur"
	"wordmap/internal/layout"
	"wordmap/internal/logger"
	"wordmap/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：都道府県间的词共现矩阵
// 约束：输入为词云布局记录数组（name + data[].word）；输出 {"vocab", "cooccurrence_matrix"}，两空格缩进。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	in := utils.EnvString("COOCCUR_INPUT", "public/data/wordcloud_layout.json")
	out := utils.EnvString("COOCCUR_OUTPUT", "cooccurrence_matrix_all_pref.json")
	var recs []layout.Record
	if err := utils.ReadJSON(in, &recs); err != nil {
		l.Error("layout_read_error", "path", in, "err", err)
		os.Exit(1)
	}
	m := cooccur.Build(recs)
	if err := utils.WriteJSON(out, m, true); err != nil {
		l.Error("cooccur_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	l.Info("cooccur_done", "records", len(recs), "vocab", len(m.Vocab), "path", out)
}
