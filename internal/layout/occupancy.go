package layout

import (
	"math/rand"

	"wordmap/internal/mask"
)

// occupancy：占用表及其积分图，(h+1)×(w+1)，首行首列为 0
type occupancy struct {
	w, h  int
	integ []int32
}

// newOccupancy：遮罩之外的像素一开始就被占用
func newOccupancy(m *mask.Mask) *occupancy {
	o := &occupancy{w: m.Width, h: m.Height, integ: make([]int32, (m.Width+1)*(m.Height+1))}
	stride := o.w + 1
	for y := 0; y < o.h; y++ {
		var rowSum int32
		for x := 0; x < o.w; x++ {
			if !m.Foreground(x, y) {
				rowSum++
			}
			o.integ[(y+1)*stride+x+1] = o.integ[y*stride+x+1] + rowSum
		}
	}
	return o
}

func (o *occupancy) clone() *occupancy {
	c := *o
	c.integ = append([]int32(nil), o.integ...)
	return &c
}

// sum：[r0,r1)×[c0,c1) 内的占用像素数
func (o *occupancy) sum(r0, c0, r1, c1 int) int32 {
	s := o.w + 1
	return o.integ[r1*s+c1] - o.integ[r0*s+c1] - o.integ[r1*s+c0] + o.integ[r0*s+c0]
}

// 文档注释：在所有能容纳 bh×bw 空框的位置中均匀随机选一个
// 背景：先统计空位数，再按随机序号二次扫描定位，保证每个空位被选中的概率相同。
// 约束：返回框左上角 (row, col)；没有空位时 ok=false，且不消耗随机数。
func (o *occupancy) sample(bh, bw int, rng *rand.Rand) (row, col int, ok bool) {
	if bh <= 0 || bw <= 0 || bh > o.h || bw > o.w {
		return 0, 0, false
	}
	hits := 0
	for r := 0; r+bh <= o.h; r++ {
		for c := 0; c+bw <= o.w; c++ {
			if o.sum(r, c, r+bh, c+bw) == 0 {
				hits++
			}
		}
	}
	if hits == 0 {
		return 0, 0, false
	}
	goal := rng.Intn(hits)
	for r := 0; r+bh <= o.h; r++ {
		for c := 0; c+bw <= o.w; c++ {
			if o.sum(r, c, r+bh, c+bw) != 0 {
				continue
			}
			if goal == 0 {
				return r, c, true
			}
			goal--
		}
	}
	return 0, 0, false
}

// fill：把 [r0,r0+bh)×[c0,c0+bw) 标记为占用
// 约束：该区域此前必须全空（由 sample 保证），因此积分图可按闭式增量更新。
func (o *occupancy) fill(r0, c0, bh, bw int) {
	r1, c1 := min(r0+bh, o.h), min(c0+bw, o.w)
	if r0 < 0 {
		r0 = 0
	}
	if c0 < 0 {
		c0 = 0
	}
	if r0 >= r1 || c0 >= c1 {
		return
	}
	s := o.w + 1
	for y := r0 + 1; y <= o.h; y++ {
		dy := int32(min(y, r1) - r0)
		for x := c0 + 1; x <= o.w; x++ {
			o.integ[y*s+x] += dy * int32(min(x, c1)-c0)
		}
	}
}
