// 包 raster：把行政区多边形渲染成固定尺寸的黑白位图，位图只作为词云的几何遮罩使用
package raster

import "math"

// Window：画布上显示的地理范围（经纬度）
type Window struct {
	MinX float64 `json:"minx_zoom"`
	MaxX float64 `json:"maxx_zoom"`
	MinY float64 `json:"miny_zoom"`
	MaxY float64 `json:"maxy_zoom"`
}

func (w Window) Width() float64  { return w.MaxX - w.MinX }
func (w Window) Height() float64 { return w.MaxY - w.MinY }

// OwnWindow：要素自身包围盒外扩 margin（比例，0.05 即四周各 5%）
// 背景：特写图每个区域单独取景，词云可以铺满画面
func OwnWindow(b [4]float64, margin float64) Window {
	xm := (b[2] - b[0]) * margin
	ym := (b[3] - b[1]) * margin
	return Window{MinX: b[0] - xm, MaxX: b[2] + xm, MinY: b[1] - ym, MaxY: b[3] + ym}
}

// 文档注释：全国共用取景
// 背景：全国图层要求各都道府県的位图可以直接叠加，因此所有区域使用同一取景；
// 全国包围盒外扩 margin 后，若高宽比不足 aspect 则上下对称补足，再以中心按 zoom 缩放（zoom<1 放大）。
// 约束：aspect 为 高/宽；zoom<=0 视为 1。
func SharedWindow(b [4]float64, margin, aspect, zoom float64) Window {
	w := OwnWindow(b, margin)
	if aspect > 0 {
		desired := w.Width() * aspect
		if diff := desired - w.Height(); diff > 0 {
			w.MinY -= diff / 2
			w.MaxY += diff / 2
		}
	}
	if zoom <= 0 {
		zoom = 1
	}
	cx, cy := (w.MinX+w.MaxX)/2, (w.MinY+w.MaxY)/2
	zw, zh := w.Width()*zoom, w.Height()*zoom
	return Window{MinX: cx - zw/2, MaxX: cx + zw/2, MinY: cy - zh/2, MaxY: cy + zh/2}
}

// Canvas：输出位图像素尺寸
type Canvas struct {
	WidthPx  int `json:"width_px"`
	HeightPx int `json:"height_px"`
}

// CanvasFromInches：英寸 × dpi，默认 10×10in @300dpi
func CanvasFromInches(wIn, hIn float64, dpi int) Canvas {
	return Canvas{WidthPx: int(wIn * float64(dpi)), HeightPx: int(hIn * float64(dpi))}
}

// CanvasMaxEdge：按取景宽高比确定尺寸，长边为 maxEdge 像素
func CanvasMaxEdge(w Window, maxEdge int) Canvas {
	ww, wh := w.Width(), w.Height()
	if ww <= 0 || wh <= 0 {
		return Canvas{WidthPx: maxEdge, HeightPx: maxEdge}
	}
	if ww >= wh {
		return Canvas{WidthPx: maxEdge, HeightPx: max(1, int(math.Round(float64(maxEdge)*wh/ww)))}
	}
	return Canvas{WidthPx: max(1, int(math.Round(float64(maxEdge)*ww/wh))), HeightPx: maxEdge}
}

// Projector：经纬度到像素的等比例映射
// 约束：x/y 使用同一比例尺（等比例），取景在画布中居中；像素 y 轴向下，纬度向上
type Projector struct {
	scale      float64
	offX, offY float64
	win        Window
}

func NewProjector(w Window, c Canvas) Projector {
	ww, wh := w.Width(), w.Height()
	s := 0.0
	if ww > 0 && wh > 0 {
		s = math.Min(float64(c.WidthPx)/ww, float64(c.HeightPx)/wh)
	}
	return Projector{
		scale: s,
		offX:  (float64(c.WidthPx) - ww*s) / 2,
		offY:  (float64(c.HeightPx) - wh*s) / 2,
		win:   w,
	}
}

// ToPixel：返回浮点像素坐标
func (p Projector) ToPixel(lon, lat float64) (x, y float64) {
	return p.offX + (lon-p.win.MinX)*p.scale, p.offY + (p.win.MaxY-lat)*p.scale
}

// Degenerate：取景宽或高为零时无法映射
func (p Projector) Degenerate() bool { return p.scale == 0 }
