package raster

import (
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"wordmap/internal/geo"

	"golang.org/x/image/vector"
)

const (
	Background uint8 = 0xff
	Foreground uint8 = 0x00
)

// CoverageCutoff：像素被环覆盖的比例达到一半即视为在环内
const CoverageCutoff uint8 = 0x80

// 文档注释：渲染单个要素
// 背景：位图只用作遮罩，白底黑填充、无描边、无坐标轴；覆盖率由 x/image/vector 计算后按 CoverageCutoff 二值化，
// 同一多边形的各环按奇偶规则叠加，洞保持白色，与环的方向无关。
// 约束：空几何或取景退化时返回全白位图，不在此处报错，由遮罩阶段发现并跳过。
func Render(f *geo.Feature, w Window, c Canvas) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, c.WidthPx, c.HeightPx))
	for i := range img.Pix {
		img.Pix[i] = Background
	}
	p := NewProjector(w, c)
	if p.Degenerate() {
		return img
	}
	z := vector.NewRasterizer(1, 1)
	for _, poly := range f.Polys {
		fillPolygon(img, z, p, poly)
	}
	return img
}

// fillPolygon：在多边形的像素包围盒内逐环光栅化，覆盖过半的像素翻转一次，奇数次即为内部
func fillPolygon(img *image.Gray, z *vector.Rasterizer, p Projector, poly geo.Polygon) {
	rings := make([][][2]float64, 0, len(poly.Rings))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, ring := range poly.Rings {
		if len(ring) < 3 {
			continue
		}
		pts := make([][2]float64, len(ring))
		for i, pt := range ring {
			x, y := p.ToPixel(pt.Lon, pt.Lat)
			pts[i] = [2]float64{x, y}
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
		rings = append(rings, pts)
	}
	if len(rings) == 0 {
		return
	}
	x0 := max(0, int(math.Floor(minX)))
	y0 := max(0, int(math.Floor(minY)))
	x1 := min(img.Rect.Dx(), int(math.Ceil(maxX)))
	y1 := min(img.Rect.Dy(), int(math.Ceil(maxY)))
	if x0 >= x1 || y0 >= y1 {
		return
	}
	bw, bh := x1-x0, y1-y0
	inside := make([]bool, bw*bh)
	cov := image.NewAlpha(image.Rect(0, 0, bw, bh))
	ox, oy := float64(x0), float64(y0)
	for _, pts := range rings {
		// Reset 会把 DrawOp 恢复为 Over
		z.Reset(bw, bh)
		z.DrawOp = draw.Src
		z.MoveTo(float32(pts[0][0]-ox), float32(pts[0][1]-oy))
		for _, pt := range pts[1:] {
			z.LineTo(float32(pt[0]-ox), float32(pt[1]-oy))
		}
		z.ClosePath()
		z.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})
		for i, a := range cov.Pix {
			if a >= CoverageCutoff {
				inside[i] = !inside[i]
			}
		}
	}
	for y := 0; y < bh; y++ {
		off := (y0+y)*img.Stride + x0
		for x := 0; x < bw; x++ {
			if inside[y*bw+x] {
				img.Pix[off+x] = Foreground
			}
		}
	}
}

// WritePNG：写出 PNG，自动创建父目录
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadPNG：读取 PNG
func ReadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// IsBlank：位图中不存在任何非背景像素
func IsBlank(img *image.Gray) bool {
	for _, v := range img.Pix {
		if v != Background {
			return false
		}
	}
	return true
}
