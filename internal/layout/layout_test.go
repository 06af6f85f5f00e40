package layout

import (
	"image"
	"math/rand"
	"testing"

	"wordmap/internal/mask"
	"wordmap/internal/tfidf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rectMask：w×h 画布，[x0,x1)×[y0,y1) 为前景
func rectMask(w, h, x0, y0, x1, y1 int) *mask.Mask {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 0xff
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			g.Pix[y*g.Stride+x] = 0
		}
	}
	return mask.FromImage(g, mask.DefaultThreshold)
}

func sampleScores() []tfidf.TermScore {
	return []tfidf.TermScore{
		{Word: "札幌", Score: 0.9},
		{Word: "ジンギスカン", Score: 0.6},
		{Word: "時計台", Score: 0.4},
		{Word: "雪まつり", Score: 0.3},
		{Word: "すすきの", Score: 0.2},
		{Word: "ビール", Score: 0.1},
		{Word: "無効", Score: 0},
	}
}

func TestGeneratePlacesInsideMaskWithoutOverlap(t *testing.T) {
	m := rectMask(240, 160, 20, 10, 220, 150)
	cfg := DefaultConfig()
	cfg.Seed = 7
	ps := New(cfg, EmBoxMeasurer{}).Generate(sampleScores(), m)
	require.NotEmpty(t, ps)
	assert.Equal(t, "札幌", ps[0].Word)

	for i, p := range ps {
		assert.NotEqual(t, "無効", p.Word)
		assert.GreaterOrEqual(t, p.FontSize, cfg.MinFontSize)
		if i > 0 {
			assert.LessOrEqual(t, p.FontSize, ps[i-1].FontSize)
		}
		for y := p.Row; y < p.Row+p.Height; y++ {
			for x := p.Col; x < p.Col+p.Width; x++ {
				require.True(t, m.Foreground(x, y), "%s leaks at %d,%d", p.Word, x, y)
			}
		}
		a := image.Rect(p.Col, p.Row, p.Col+p.Width, p.Row+p.Height)
		for _, q := range ps[:i] {
			b := image.Rect(q.Col, q.Row, q.Col+q.Width, q.Row+q.Height)
			assert.True(t, a.Intersect(b).Empty(), "%s overlaps %s", p.Word, q.Word)
		}
		_, err := ParseCSSColor(p.Color)
		assert.NoError(t, err)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	m := rectMask(120, 80, 0, 0, 120, 80)
	cfg := DefaultConfig()
	cfg.Seed = 42
	a := New(cfg, nil).Generate(sampleScores(), m)
	b := New(cfg, nil).Generate(sampleScores(), m)
	assert.Equal(t, a, b)
}

func TestGenerateEmptyInputs(t *testing.T) {
	m := rectMask(50, 50, 0, 0, 50, 50)
	assert.Empty(t, New(DefaultConfig(), nil).Generate(nil, m))

	tiny := rectMask(50, 50, 0, 0, 2, 2)
	assert.Empty(t, New(DefaultConfig(), nil).Generate(sampleScores(), tiny))
}

func TestGenerateRespectsMaxWords(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWords = 2
	cfg.MaxFontSize = 12
	ps := New(cfg, nil).Generate(sampleScores(), rectMask(300, 300, 0, 0, 300, 300))
	assert.Len(t, ps, 2)
	assert.Equal(t, 12, ps[0].FontSize)
}

func TestOccupancySample(t *testing.T) {
	occ := newOccupancy(rectMask(10, 10, 0, 0, 10, 10))
	rng := rand.New(rand.NewSource(1))
	r, c, ok := occ.sample(10, 10, rng)
	require.True(t, ok)
	assert.Equal(t, [2]int{0, 0}, [2]int{r, c})

	occ.fill(0, 0, 10, 5)
	assert.EqualValues(t, 50, occ.sum(0, 0, 10, 10))
	r, c, ok = occ.sample(10, 5, rng)
	require.True(t, ok)
	assert.Equal(t, [2]int{0, 5}, [2]int{r, c})
	_, _, ok = occ.sample(1, 6, rng)
	assert.False(t, ok)

	part := newOccupancy(rectMask(10, 10, 2, 3, 6, 5))
	assert.EqualValues(t, 92, part.sum(0, 0, 10, 10))
	r, c, ok = part.sample(2, 4, rng)
	require.True(t, ok)
	assert.Equal(t, [2]int{3, 2}, [2]int{r, c})
}

func TestEmBoxMeasurer(t *testing.T) {
	var m EmBoxMeasurer
	w, h := m.Measure("東京", 10)
	assert.Equal(t, [2]int{20, 10}, [2]int{w, h})
	w, _ = m.Measure("ab", 10)
	assert.Equal(t, 10, w)
	w, _ = m.Measure("aB東", 9)
	assert.Equal(t, 18, w)
	w, _ = m.Measure("ｶﾚｰ", 10)
	assert.Equal(t, 15, w)
}

func TestCoolwarm(t *testing.T) {
	assert.Equal(t, "rgb(59, 76, 192)", CSSColor(Coolwarm(0)))
	assert.Equal(t, "rgb(221, 221, 221)", CSSColor(Coolwarm(0.5)))
	assert.Equal(t, "rgb(180, 4, 38)", CSSColor(Coolwarm(1)))
	assert.Equal(t, "rgb(180, 4, 38)", CSSColor(Coolwarm(3)))
	r, _, b := Coolwarm(0.125)
	assert.InDelta(t, 91.5, r, 1e-9)
	assert.InDelta(t, 220.5, b, 1e-9)

	c, err := ParseCSSColor("rgb(1, 2, 3)")
	require.NoError(t, err)
	assert.Equal(t, uint8(3), c.B)
	_, err = ParseCSSColor("#fff")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	bb := mask.BBox{XMin: 10, XMax: 110, YMin: 20, YMax: 70}
	ps := []Placement{
		{Word: "札幌", FontSize: 30, Row: 45, Col: 60, Rotated: true, Color: "rgb(1, 2, 3)"},
		{Word: "外", FontSize: 8, Row: 75, Col: 5},
		{Word: "端数", FontSize: 8, Row: 23, Col: 13},
	}
	got, err := Normalize(ps, bb, map[string]float64{"札幌": 0.25})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, WordEntry{
		Word: "札幌", TFIDFScore: 0.25, FontSize: 30,
		PrintAreaX: [2]int{10, 110}, PrintAreaY: [2]int{20, 70},
		X: 50, Y: 25, NormX: 0.5, NormY: 0.5, Orientation: true, Color: "rgb(1, 2, 3)",
	}, got[0])
	assert.Equal(t, 0.0, got[1].NormX)
	assert.Equal(t, 1.0, got[1].NormY)
	assert.Equal(t, -5.0, got[1].X)
	assert.Equal(t, 0.06, got[2].NormY)
	assert.Equal(t, 0.03, got[2].NormX)
	for _, e := range got {
		assert.GreaterOrEqual(t, e.NormX, 0.0)
		assert.LessOrEqual(t, e.NormX, 1.0)
		assert.GreaterOrEqual(t, e.NormY, 0.0)
		assert.LessOrEqual(t, e.NormY, 1.0)
	}

	_, err = Normalize(ps, mask.BBox{XMin: 3, XMax: 3, YMin: 0, YMax: 9}, nil)
	assert.ErrorIs(t, err, ErrDegenerateBBox)
}

func TestRenderPreview(t *testing.T) {
	m := rectMask(60, 40, 0, 0, 60, 40)
	ps := []Placement{{Word: "ab", FontSize: 10, Row: 5, Col: 5, Width: 10, Height: 10, Color: "rgb(180, 4, 38)"}}
	img := RenderPreview(m, ps, nil)
	assert.Equal(t, image.Rect(0, 0, 60, 40), img.Bounds())
	assert.Equal(t, uint8(180), img.RGBAAt(5, 5).R)
}
