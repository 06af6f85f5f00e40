package layout

import (
	"image"
	"image/color"
	"image/draw"

	"wordmap/internal/mask"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FaceSource：按字号提供字体；*FontMeasurer 满足该接口
type FaceSource interface {
	Face(size int) (font.Face, error)
}

// 文档注释：绘制排布预览图
// 背景：调参时需要肉眼检查排布是否贴合遮罩；遮罩外画浅灰，词框按其颜色描边，横排词写出文字。
// 约束：faces 为 nil 时文字用 basicfont 代替，仅用于确认位置，不代表真实字形。
func RenderPreview(m *mask.Mask, ps []Placement, faces FaceSource) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	grey := color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Foreground(x, y) {
				img.SetRGBA(x, y, grey)
			}
		}
	}
	for _, p := range ps {
		c, err := ParseCSSColor(p.Color)
		if err != nil {
			c = color.RGBA{A: 0xff}
		}
		outline(img, image.Rect(p.Col, p.Row, p.Col+p.Width, p.Row+p.Height), c)
		if p.Rotated {
			continue
		}
		var face font.Face = basicfont.Face7x13
		if faces != nil {
			if f, err := faces.Face(p.FontSize); err == nil {
				face = f
			}
		}
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(p.Col, p.Row+face.Metrics().Ascent.Ceil()),
		}
		d.DrawString(p.Word)
	}
	return img
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}
