package raster

// PixelBox：区域经纬度包围盒在像素空间中的范围，y 已按图像坐标翻转
type PixelBox struct {
	XLim [2]float64 `json:"xlim"`
	YLim [2]float64 `json:"ylim"`
}

// CommonBounds：全国共用取景与画布尺寸，前端据此把经纬度换算到图层像素
type CommonBounds struct {
	Window
	Canvas
}

// PixelBounds：把要素包围盒换算为像素范围
func PixelBounds(b [4]float64, w Window, c Canvas) PixelBox {
	p := NewProjector(w, c)
	x0, y0 := p.ToPixel(b[0], b[3])
	x1, y1 := p.ToPixel(b[2], b[1])
	return PixelBox{XLim: [2]float64{x0, x1}, YLim: [2]float64{y0, y1}}
}
