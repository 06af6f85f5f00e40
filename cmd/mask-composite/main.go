package main

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"wordmap/internal/logger"
	"wordmap/internal/raster"
	"wordmap/internal/utils"

	"github.com/joho/godotenv"
)

// 文档注释：叠加全国图层预览
// 约束：读取 COMPOSITE_DIR 下全部 PNG（按文件名排序）；读不了的图跳过；一张都没有时退出码为 1。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	dir := utils.EnvString("COMPOSITE_DIR", "prefecture_layer")
	out := utils.EnvString("COMPOSITE_OUTPUT", "combined_prefectures.png")
	paths, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		l.Error("composite_glob_error", "err", err)
		os.Exit(1)
	}
	sort.Strings(paths)
	var imgs []image.Image
	for _, p := range paths {
		img, err := raster.ReadPNG(p)
		if err != nil {
			l.Warn("composite_read_error", "path", p, "err", err)
			continue
		}
		imgs = append(imgs, img)
	}
	canvas, err := raster.Composite(imgs)
	if err != nil {
		l.Error("composite_error", "dir", dir, "err", err)
		os.Exit(1)
	}
	if err := raster.WritePNG(out, canvas); err != nil {
		l.Error("composite_write_error", "path", out, "err", err)
		os.Exit(1)
	}
	l.Info("composite_done", "layers", len(imgs), "path", out)
}
