// 包 mask：从渲染好的位图中提取词云可用区域与其像素包围盒
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// DefaultThreshold：亮度低于该值的像素视为前景（可放置文字）
const DefaultThreshold = 128

var (
	// ErrEmptyMask：位图中没有任何前景像素；调用方按区域跳过并记录告警
	ErrEmptyMask = errors.New("mask: no foreground pixels")
)

// Mask：二值遮罩，按行优先存储
type Mask struct {
	Width, Height int
	fg            []bool
}

// BBox：前景像素的最小/最大行列，闭区间，保证落在 [0,w)×[0,h) 内
type BBox struct {
	XMin, XMax int
	YMin, YMax int
}

func (b BBox) Width() int  { return b.XMax - b.XMin }
func (b BBox) Height() int { return b.YMax - b.YMin }

// 文档注释：由任意图像生成遮罩
// 背景：先转 8 位灰度（与常见图像库的 L 模式一致的加权），再按阈值二值化。
// 约束：带透明通道的像素按其合成到黑底后的亮度判定，完全透明视为前景之外需由调用方预先铺白底。
func FromImage(img image.Image, threshold uint8) *Mask {
	b := img.Bounds()
	m := &Mask{Width: b.Dx(), Height: b.Dy(), fg: make([]bool, b.Dx()*b.Dy())}
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < m.Height; y++ {
			row := g.Pix[y*g.Stride : y*g.Stride+m.Width]
			for x, v := range row {
				m.fg[y*m.Width+x] = v < threshold
			}
		}
		return m
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			l := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			m.fg[y*m.Width+x] = l < threshold
		}
	}
	return m
}

// Load：读取 PNG 并以默认阈值生成遮罩
func Load(path string) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img, DefaultThreshold), nil
}

// Foreground：坐标越界返回 false
func (m *Mask) Foreground(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.fg[y*m.Width+x]
}

// Count：前景像素数
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.fg {
		if v {
			n++
		}
	}
	return n
}

// BBox：前景包围盒；无前景时返回 ErrEmptyMask
func (m *Mask) BBox() (BBox, error) {
	bb := BBox{XMin: m.Width, XMax: -1, YMin: m.Height, YMax: -1}
	for y := 0; y < m.Height; y++ {
		row := m.fg[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if !v {
				continue
			}
			if x < bb.XMin {
				bb.XMin = x
			}
			if x > bb.XMax {
				bb.XMax = x
			}
			if y < bb.YMin {
				bb.YMin = y
			}
			if y > bb.YMax {
				bb.YMax = y
			}
		}
	}
	if bb.XMax < 0 {
		return BBox{}, ErrEmptyMask
	}
	return bb, nil
}
