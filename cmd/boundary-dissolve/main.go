package main

import (
	"context"
	"os"
	"os/signal"
	"wordmap/internal/dissolve"
	"wordmap/internal/geo"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：按都道府県合并市区町村边界
// 背景：全国图层需要都道府県轮廓；拓扑清理与合并交给 mapshaper，本工具负责拆分、调用与汇总。
// 约束：MAPSHAPER_BIN 需在 PATH 中或给出绝对路径；单个都道府県失败不影响其余，缺失的都道府県在日志中列出。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in := utils.EnvString("DISSOLVE_INPUT", "create_map/merge/municipalities.json")
	out := utils.EnvString("DISSOLVE_OUTPUT", "create_map/merge/municipalities_tuning_merged.geojson")
	fc, err := geo.LoadFeatureCollection(in)
	if err != nil {
		l.Error("boundary_load_error", "path", in, "err", err)
		os.Exit(1)
	}
	d := &dissolve.Dissolver{
		Bin:     utils.EnvString("MAPSHAPER_BIN", "mapshaper"),
		OutDir:  utils.EnvString("DISSOLVE_OUT_DIR", "create_map/merge/prefectures"),
		TempDir: utils.EnvString("DISSOLVE_TEMP_DIR", ""),
		Log:     logger.Component("dissolve"),
	}
	res, err := d.Run(ctx, fc)
	if err != nil {
		l.Error("dissolve_error", "err", err)
		os.Exit(1)
	}
	if err := geo.WriteFile(out, res.Features, false); err != nil {
		l.Error("dissolve_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	if len(res.Missing) > 0 {
		l.Warn("dissolve_incomplete", "missing", res.Missing)
	}
	l.Info("dissolve_all_done", "prefectures", len(res.Prefectures), "features", len(res.Features), "path", out)
	if err := metrics.Flush("boundary-dissolve"); err != nil {
		l.Warn("metrics_flush_error", "err", err)
	}
}
