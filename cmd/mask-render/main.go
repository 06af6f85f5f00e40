package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"wordmap/internal/geo"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/raster"
	"wordmap/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：把边界渲染成词云遮罩位图
// 背景：MASK_MODE=shared 时全部区域共用全国取景（图层可直接叠加），并写出取景与像素包围盒 JSON；
// MASK_MODE=closeup 时每个区域单独取景，适合都道府県或市区町村特写。
// 约束：MASK_GROUP_BY 非空时按该属性分子目录；MASK_WORKERS 控制并发，默认串行。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in := utils.EnvString("MASK_INPUT", "japan.geojson")
	mode := strings.ToLower(utils.EnvString("MASK_MODE", "shared"))
	if mode != "shared" && mode != "closeup" {
		l.Error("mask_mode_invalid", "mode", mode)
		os.Exit(1)
	}
	names := utils.EnvList("MASK_NAME_PROPS")
	if len(names) == 0 {
		names = []string{"prefecture", "nam_ja", "N03_004"}
	}
	fc, err := geo.LoadFeatureCollection(in)
	if err != nil {
		l.Error("boundary_load_error", "path", in, "err", err)
		os.Exit(1)
	}
	canvas := raster.CanvasFromInches(
		utils.EnvFloat("MASK_WIDTH_IN", 10),
		utils.EnvFloat("MASK_HEIGHT_IN", 10),
		utils.EnvInt("MASK_DPI", 300),
	)
	b := &raster.Batch{
		OutDir:    utils.EnvString("MASK_OUT_DIR", "prefecture_layer"),
		GroupBy:   utils.EnvString("MASK_GROUP_BY", ""),
		NameProps: names,
		Shared:    mode == "shared",
		Margin:    utils.EnvFloat("MASK_MARGIN", 0.05),
		Aspect:    utils.EnvFloat("MASK_ASPECT", 1.3),
		Zoom:      utils.EnvFloat("MASK_ZOOM", 1),
		Canvas:    canvas,
		MaxEdge:   utils.EnvInt("MASK_MAX_EDGE", 0),
		Workers:   utils.EnvInt("MASK_WORKERS", 1),
		Log:       logger.Component("raster"),
	}
	res, err := b.Run(ctx, fc)
	if err != nil {
		l.Error("mask_render_error", "err", err)
		os.Exit(1)
	}
	if err := res.WriteBounds(utils.EnvString("MASK_BOUNDS_DIR", ".")); err != nil {
		l.Error("mask_bounds_write_error", "err", err)
		os.Exit(1)
	}
	l.Info("mask_render_done", "mode", mode, "written", res.Written, "blank", res.Blank, "failed", res.Failed)
	if err := metrics.Flush("mask-render"); err != nil {
		l.Warn("metrics_flush_error", "err", err)
	}
}
