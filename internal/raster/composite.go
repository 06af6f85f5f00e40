package raster

import (
	"errors"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ErrNoImages：合成输入为空
var ErrNoImages = errors.New("raster: no images to composite")

// WhiteCutoff：RGB 三个通道都大于该值的像素视为背景
const WhiteCutoff = 240

// WhiteToTransparent：把近白像素变为透明，其余像素保持原色不透明度
func WhiteToTransparent(src image.Image) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			if c.R > WhiteCutoff && c.G > WhiteCutoff && c.B > WhiteCutoff {
				c = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0}
			}
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}

// 文档注释：叠加全部图层
// 背景：共用取景渲染的各都道府県位图去白底后依次 alpha 合成，得到全国预览图。
// 约束：以第一张图的尺寸为准，尺寸不同的图按双线性缩放；画布初始全透明。
func Composite(imgs []image.Image) (*image.NRGBA, error) {
	if len(imgs) == 0 {
		return nil, ErrNoImages
	}
	size := imgs[0].Bounds().Size()
	rect := image.Rect(0, 0, size.X, size.Y)
	canvas := image.NewNRGBA(rect)
	for _, im := range imgs {
		layer := WhiteToTransparent(im)
		var src image.Image = layer
		if layer.Bounds().Size() != size {
			scaled := image.NewNRGBA(rect)
			xdraw.ApproxBiLinear.Scale(scaled, rect, layer, layer.Bounds(), xdraw.Src, nil)
			src = scaled
		}
		xdraw.Draw(canvas, rect, src, image.Point{}, xdraw.Over)
	}
	return canvas, nil
}
