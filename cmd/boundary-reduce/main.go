package main

import (
	"os"
	"wordmap/internal/geo"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：N03 行政区边界缩减
// 背景：同一市区町村常被拆成多个多边形（离岛、飞地），词云只需要面积最大的那一块。
// 约束：BOUNDARY_INPUT 为 N03 GeoJSON；面积在 BOUNDARY_AREA_PROJ 投影下计算（默认 JGD2011 平面直角 IX 系）；
// 输出按 N03_007 排序写入 BOUNDARY_OUTPUT。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	in := utils.EnvString("BOUNDARY_INPUT", "N03-23_230101.geojson")
	out := utils.EnvString("BOUNDARY_OUTPUT", "output.geojson")
	area, err := geo.ProjectedArea(utils.EnvString("BOUNDARY_AREA_PROJ", geo.DefaultAreaProj))
	if err != nil {
		l.Error("area_proj_error", "err", err)
		os.Exit(1)
	}
	fc, err := geo.LoadFeatureCollection(in)
	if err != nil {
		l.Error("boundary_load_error", "path", in, "err", err)
		os.Exit(1)
	}
	kept, err := geo.Reduce(fc, area)
	if err != nil {
		l.Error("boundary_reduce_error", "err", err)
		os.Exit(1)
	}
	if err := geo.WriteFile(out, kept, false); err != nil {
		l.Error("boundary_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	metrics.RegionsProcessedTotal.WithLabelValues("reduce").Add(float64(len(kept)))
	l.Info("boundary_reduce_done", "in", len(fc.Features), "out", len(kept), "path", out)
	if err := metrics.Flush("boundary-reduce"); err != nil {
		l.Warn("metrics_flush_error", "err", err)
	}
}
