package main

import (
	"fmt"
	"os"
	"path/filepath"
	"wordmap/internal/geo"
	"wordmap/internal/logger"
	"wordmap/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：按口コミ量排行抽取市区町村边界
// 背景：只为排行靠前的地域绘制词云；排行榜来自 municipality-rank。
// 约束：EXTRACT_TOP_N 必填且为正；输出每行一个要素，便于 diff 与逐行处理。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	n := utils.EnvInt("EXTRACT_TOP_N", 0)
	if n <= 0 {
		l.Error("extract_top_n_missing")
		os.Exit(1)
	}
	in := utils.EnvString("EXTRACT_INPUT", "create_map/merge/merged.json")
	ranking := utils.EnvString("EXTRACT_RANKING", "create_wordcloud/result.json")
	out := utils.EnvString("EXTRACT_OUTPUT", filepath.Join("create_map", fmt.Sprintf("extract_polygons_%d.geojson", n)))

	names, err := geo.LoadRankingNames(ranking)
	if err != nil {
		l.Error("ranking_load_error", "path", ranking, "err", err)
		os.Exit(1)
	}
	fc, err := geo.LoadFeatureCollection(in)
	if err != nil {
		l.Error("boundary_load_error", "path", in, "err", err)
		os.Exit(1)
	}
	kept := geo.ExtractByRanking(fc.Features, names, n)
	if err := geo.WriteFile(out, kept, true); err != nil {
		l.Error("extract_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	l.Info("extract_done", "names", min(n, len(names)), "features", len(kept), "path", out)
}
