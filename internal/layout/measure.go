package layout

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/text/width"
)

// Measurer：给定字号下单词的水平外接框（像素）
type Measurer interface {
	Measure(word string, size int) (w, h int)
}

// EmBoxMeasurer：不依赖字体文件的近似度量；全角字符占 1 em，半角占 0.5 em，高度 1 em
type EmBoxMeasurer struct{}

func (EmBoxMeasurer) Measure(word string, size int) (int, int) {
	halves := 0
	for _, r := range word {
		if isWide(r) {
			halves += 2
		} else {
			halves++
		}
	}
	return (halves*size + 1) / 2, size
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	case width.EastAsianAmbiguous:
		return unicode.Is(unicode.Han, r)
	}
	return false
}

// FontMeasurer：基于 TTF/OTF/TTC 字体的度量，按字号缓存 face
// 约束：非并发安全；用完需 Close。
type FontMeasurer struct {
	font  *opentype.Font
	faces map[int]font.Face
}

// LoadFontMeasurer：.ttc 取集合中的第一个字体
func LoadFontMeasurer(path string) (*FontMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f *opentype.Font
	if strings.EqualFold(fileExt(path), ".ttc") {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse font collection %s: %w", path, err)
		}
		if f, err = coll.Font(0); err != nil {
			return nil, err
		}
	} else if f, err = opentype.Parse(data); err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &FontMeasurer{font: f, faces: map[int]font.Face{}}, nil
}

func (m *FontMeasurer) face(size int) (font.Face, error) {
	if fc, ok := m.faces[size]; ok {
		return fc, nil
	}
	fc, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = fc
	return fc, nil
}

// Measure：face 创建失败时退回 em 框
func (m *FontMeasurer) Measure(word string, size int) (int, int) {
	fc, err := m.face(size)
	if err != nil {
		return EmBoxMeasurer{}.Measure(word, size)
	}
	met := fc.Metrics()
	return font.MeasureString(fc, word).Ceil(), (met.Ascent + met.Descent).Ceil()
}

// Face：供预览图绘制使用
func (m *FontMeasurer) Face(size int) (font.Face, error) { return m.face(size) }

func (m *FontMeasurer) Close() error {
	for k, fc := range m.faces {
		_ = fc.Close()
		delete(m.faces, k)
	}
	return nil
}

func fileExt(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}
