package layout

import (
	"fmt"
	"image/color"
	"math"
)

// coolwarm 发散色带的控制点，位置 0..1，分量 0..255
var coolwarm = []struct {
	at      float64
	r, g, b float64
}{
	{0.00, 59, 76, 192},
	{0.25, 124, 159, 249},
	{0.50, 221, 221, 221},
	{0.75, 244, 154, 123},
	{1.00, 180, 4, 38},
}

// Coolwarm：分段线性插值，t 超出 [0,1] 时截断
func Coolwarm(t float64) (r, g, b float64) {
	t = math.Max(0, math.Min(1, t))
	for i := 1; i < len(coolwarm); i++ {
		hi := coolwarm[i]
		if t > hi.at && i < len(coolwarm)-1 {
			continue
		}
		lo := coolwarm[i-1]
		f := (t - lo.at) / (hi.at - lo.at)
		return lo.r + f*(hi.r-lo.r), lo.g + f*(hi.g-lo.g), lo.b + f*(hi.b-lo.b)
	}
	last := coolwarm[len(coolwarm)-1]
	return last.r, last.g, last.b
}

// CSSColor：rgb(r, g, b)，分量四舍五入到整数
func CSSColor(r, g, b float64) string {
	return fmt.Sprintf("rgb(%.0f, %.0f, %.0f)", math.Max(0, r), math.Max(0, g), math.Max(0, b))
}

// ParseCSSColor：解析 CSSColor 的输出，用于预览图着色
func ParseCSSColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("layout: bad color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
