package raster

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"wordmap/internal/geo"
	"wordmap/internal/logger"
	"wordmap/internal/metrics"
	"wordmap/internal/utils"

	"golang.org/x/sync/errgroup"
)

// Batch：一批要素的遮罩渲染任务
type Batch struct {
	OutDir string
	// GroupBy：非空时按该属性分子目录（如 N03_001）
	GroupBy string
	// NameProps：文件名取第一个非空属性
	NameProps []string
	// Shared：true 时全部要素共用全国取景，并输出像素包围盒
	Shared  bool
	Margin  float64
	Aspect  float64
	Zoom    float64
	Canvas  Canvas
	MaxEdge int
	Workers int
	Log     *slog.Logger
}

// BatchResult：渲染汇总；Common/Pixels 仅在共用取景时填充
type BatchResult struct {
	Common  *CommonBounds
	Pixels  map[string]PixelBox
	Written int
	Blank   int
	Failed  int
}

type target struct {
	f    *geo.Feature
	path string
	key  string
}

// Targets：计算每个要素的输出路径
// 约束：名称缺失的要素跳过；同目录重名时追加 _<N03_007>。
func (b *Batch) Targets(fs []*geo.Feature) []target {
	used := map[string]bool{}
	var out []target
	for _, f := range fs {
		name := ""
		for _, p := range b.NameProps {
			if v := f.Prop(p); v != "" {
				name = v
				break
			}
		}
		if name == "" {
			b.log().Warn("mask_name_missing", "index", f.Index)
			continue
		}
		dir := b.OutDir
		if b.GroupBy != "" {
			dir = filepath.Join(dir, safe(f.Prop(b.GroupBy)))
		}
		key := name
		path := filepath.Join(dir, safe(name)+".png")
		if used[path] {
			key = name + "_" + f.AdminCode()
			path = filepath.Join(dir, safe(key)+".png")
		}
		used[path] = true
		out = append(out, target{f: f, path: path, key: key})
	}
	return out
}

// 文档注释：并发渲染并写出 PNG
// 背景：全国约 1900 个市区町村，单线程渲染 3000px 位图耗时很长；按 Workers 限制并发。
// 约束：单个要素写出失败只计数并记录；ctx 取消时返回 ctx 错误；共用取景模式下 Pixels 以输出名为键。
func (b *Batch) Run(ctx context.Context, fc *geo.FeatureCollection) (*BatchResult, error) {
	res := &BatchResult{}
	var shared Window
	if b.Shared {
		bounds, ok := fc.Bounds()
		if !ok {
			return res, nil
		}
		shared = SharedWindow(bounds, b.Margin, b.Aspect, b.Zoom)
		res.Common = &CommonBounds{Window: shared, Canvas: b.Canvas}
		res.Pixels = map[string]PixelBox{}
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.Workers))
	for _, t := range b.Targets(fc.Features) {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, c := shared, b.Canvas
			fb, hasGeom := t.f.Bounds()
			if !b.Shared {
				w = OwnWindow(fb, b.Margin)
				if b.MaxEdge > 0 {
					c = CanvasMaxEdge(w, b.MaxEdge)
				}
			}
			img := Render(t.f, w, c)
			blank := IsBlank(img)
			err := WritePNG(t.path, img)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				metrics.RegionsSkippedTotal.WithLabelValues("render", "write_error").Inc()
				b.log().Warn("mask_write_error", "path", t.path, "err", err)
				return nil
			}
			res.Written++
			metrics.RegionsProcessedTotal.WithLabelValues("render").Inc()
			if blank {
				res.Blank++
				b.log().Warn("mask_blank", "path", t.path)
			}
			if b.Shared && hasGeom {
				res.Pixels[t.key] = PixelBounds(fb, w, c)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

// WriteBounds：写出 map_common_bounds.json 与 prefecture_pixel_map_bounds.json
func (r *BatchResult) WriteBounds(dir string) error {
	if r.Common == nil {
		return nil
	}
	if err := utils.WriteJSON(filepath.Join(dir, "map_common_bounds.json"), r.Common, true); err != nil {
		return err
	}
	return utils.WriteJSON(filepath.Join(dir, "prefecture_pixel_map_bounds.json"), r.Pixels, true)
}

func (b *Batch) log() *slog.Logger {
	if b.Log == nil {
		b.Log = logger.Component("raster")
	}
	return b.Log
}

func safe(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}
