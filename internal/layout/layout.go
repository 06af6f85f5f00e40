// 包 layout：在遮罩内按得分贪心排布词云，输出每个词的位置、字号、方向与颜色
package layout

import (
	"math"
	"math/rand"
	"sort"

	"wordmap/internal/mask"
	"wordmap/internal/tfidf"
)

// Config：排布参数，零值字段由 DefaultConfig 补齐
type Config struct {
	MaxWords         int
	MinFontSize      int
	FontStep         int
	Margin           int
	PreferHorizontal float64
	RelativeScaling  float64
	// MaxFontSize 为 0 时用前两个词试排推断
	MaxFontSize int
	Seed        int64
}

func DefaultConfig() Config {
	return Config{
		MaxWords:         200,
		MinFontSize:      4,
		FontStep:         1,
		Margin:           2,
		PreferHorizontal: 0.9,
		RelativeScaling:  0.5,
	}
}

// Placement：一个已放置的词；Row/Col 为外接框左上角像素
type Placement struct {
	Word     string
	Freq     float64
	FontSize int
	Row, Col int
	Width    int
	Height   int
	Rotated  bool
	Color    string
}

// Layouter：持有随机源，同一种子下结果可复现
type Layouter struct {
	cfg     Config
	measure Measurer
	rng     *rand.Rand
}

func New(cfg Config, m Measurer) *Layouter {
	d := DefaultConfig()
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = d.MaxWords
	}
	if cfg.MinFontSize <= 0 {
		cfg.MinFontSize = d.MinFontSize
	}
	if cfg.FontStep <= 0 {
		cfg.FontStep = d.FontStep
	}
	if cfg.Margin < 0 {
		cfg.Margin = d.Margin
	}
	if cfg.PreferHorizontal <= 0 || cfg.PreferHorizontal > 1 {
		cfg.PreferHorizontal = d.PreferHorizontal
	}
	if cfg.RelativeScaling < 0 || cfg.RelativeScaling > 1 {
		cfg.RelativeScaling = d.RelativeScaling
	}
	if m == nil {
		m = EmBoxMeasurer{}
	}
	return &Layouter{cfg: cfg, measure: m, rng: rand.New(rand.NewSource(cfg.Seed))}
}

type weighted struct {
	word string
	freq float64
}

// 文档注释：在遮罩前景内排布词
// 背景：按得分降序逐词放置；字号随相对得分缩放，放不下时先换方向再逐级缩小，
// 候选位置在所有空位中均匀抽样；已放置的词框及其外边距之外的区域才能继续使用。
// 约束：得分非正的词被忽略；字号降到 MinFontSize 以下即停止，后续词不再尝试。
func (l *Layouter) Generate(scores []tfidf.TermScore, m *mask.Mask) []Placement {
	words := l.prepare(scores)
	if len(words) == 0 {
		return nil
	}
	occ := newOccupancy(m)
	size := l.cfg.MaxFontSize
	if size <= 0 {
		size = l.trialSize(words, occ, m.Height)
	}
	return l.place(words, occ, size)
}

func (l *Layouter) prepare(scores []tfidf.TermScore) []weighted {
	words := make([]weighted, 0, len(scores))
	for _, s := range scores {
		if s.Score > 0 {
			words = append(words, weighted{s.Word, s.Score})
		}
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].freq > words[j].freq })
	if len(words) > l.cfg.MaxWords {
		words = words[:l.cfg.MaxWords]
	}
	if len(words) == 0 {
		return nil
	}
	top := words[0].freq
	for i := range words {
		words[i].freq /= top
	}
	return words
}

// trialSize：用前两个词以画布高度为上限试排，取两者字号的调和平均
func (l *Layouter) trialSize(words []weighted, occ *occupancy, height int) int {
	if len(words) == 1 {
		return height
	}
	trial := l.place(words[:2], occ.clone(), height)
	switch len(trial) {
	case 0:
		return height
	case 1:
		return trial[0].FontSize
	}
	s0, s1 := float64(trial[0].FontSize), float64(trial[1].FontSize)
	return int(2 * s0 * s1 / (s0 + s1))
}

func (l *Layouter) place(words []weighted, occ *occupancy, size int) []Placement {
	cfg := l.cfg
	var out []Placement
	last := 1.0
	for _, w := range words {
		if cfg.RelativeScaling != 0 {
			rs := cfg.RelativeScaling
			size = int(math.Round((rs*(w.freq/last) + (1 - rs)) * float64(size)))
		}
		rotated := l.rng.Float64() >= cfg.PreferHorizontal
		triedOther := false
		var (
			row, col, bw, bh int
			ok               bool
		)
		for size >= cfg.MinFontSize {
			bw, bh = l.measure.Measure(w.word, size)
			if rotated {
				bw, bh = bh, bw
			}
			row, col, ok = occ.sample(bh+cfg.Margin, bw+cfg.Margin, l.rng)
			if ok {
				break
			}
			if !triedOther && cfg.PreferHorizontal < 1 {
				rotated = !rotated
				triedOther = true
			} else {
				size -= cfg.FontStep
				rotated = false
			}
		}
		if size < cfg.MinFontSize {
			break
		}
		row += cfg.Margin / 2
		col += cfg.Margin / 2
		occ.fill(row, col, bh, bw)
		out = append(out, Placement{
			Word:     w.word,
			Freq:     w.freq,
			FontSize: size,
			Row:      row,
			Col:      col,
			Width:    bw,
			Height:   bh,
			Rotated:  rotated,
			Color:    CSSColor(Coolwarm(l.rng.Float64())),
		})
		last = w.freq
	}
	return out
}
