package layout

import (
	"errors"
	"math"

	"wordmap/internal/mask"
)

// ErrDegenerateBBox：前景包围盒宽或高为 0，无法归一化
var ErrDegenerateBBox = errors.New("layout: degenerate bounding box")

// WordEntry：前端读取的单词布局
type WordEntry struct {
	Word        string  `json:"word"`
	TFIDFScore  float64 `json:"tfidf_score"`
	FontSize    int     `json:"font_size"`
	PrintAreaX  [2]int  `json:"print_area_x"`
	PrintAreaY  [2]int  `json:"print_area_y"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	NormX       float64 `json:"norm_x"`
	NormY       float64 `json:"norm_y"`
	Orientation bool    `json:"orientation"`
	Color       string  `json:"color"`
}

// Record：一个区域的全部单词布局，按 name 唯一
type Record struct {
	Name string      `json:"name"`
	Data []WordEntry `json:"data"`
}

// 文档注释：把像素位置换算为相对包围盒的坐标
// 背景：前端按区域包围盒缩放词云，需要相对偏移与 0..1 的归一化坐标。
// 约束：x、y 保留 2 位小数；norm 保留 6 位并截断到 [0,1]；包围盒任一方向跨度为 0 时返回 ErrDegenerateBBox。
// scores 提供每个词的原始得分，缺失的词记 0。
func Normalize(ps []Placement, bb mask.BBox, scores map[string]float64) ([]WordEntry, error) {
	spanX, spanY := float64(bb.XMax-bb.XMin), float64(bb.YMax-bb.YMin)
	if spanX == 0 || spanY == 0 {
		return nil, ErrDegenerateBBox
	}
	out := make([]WordEntry, 0, len(ps))
	for _, p := range ps {
		relX := float64(p.Col - bb.XMin)
		relY := float64(p.Row - bb.YMin)
		out = append(out, WordEntry{
			Word:        p.Word,
			TFIDFScore:  scores[p.Word],
			FontSize:    p.FontSize,
			PrintAreaX:  [2]int{bb.XMin, bb.XMax},
			PrintAreaY:  [2]int{bb.YMin, bb.YMax},
			X:           round(relX, 2),
			Y:           round(relY, 2),
			NormX:       clamp01(round(relX/spanX, 6)),
			NormY:       clamp01(round(relY/spanY, 6)),
			Orientation: p.Rotated,
			Color:       p.Color,
		})
	}
	return out, nil
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
