package geo

import (
	"fmt"
	"sort"
)

// 文档注释：按四级名称缩减要素
// 背景：同一市区町村在 N03 中被拆成多个多边形（本体、离岛），地图层只需要最大的一块。
// 规则：逐要素计算投影面积，按 Code 分组保留面积最大者；面积相同则保留源序号更小者（仅在严格更大时替换）；
// 输出沿用原始地理坐标几何，按 N03_007 升序，代码相同按源序号。
// 约束：任一要素面积计算失败即整体返回错误，避免输出残缺的边界集。
func Reduce(fc *FeatureCollection, area AreaFunc) ([]*Feature, error) {
	best := make(map[Code]*Feature)
	for _, f := range fc.Features {
		a, err := area(f.Polys)
		if err != nil {
			return nil, fmt.Errorf("area of feature %d: %w", f.Index, err)
		}
		f.Area = a
		c := f.Code()
		if cur, ok := best[c]; !ok || a > cur.Area {
			best[c] = f
		}
	}
	out := make([]*Feature, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	SortByAdminCode(out)
	return out, nil
}

// SortByAdminCode：按 N03_007 升序，相同代码按源序号稳定排序
func SortByAdminCode(fs []*Feature) {
	sort.SliceStable(fs, func(i, j int) bool {
		ci, cj := fs[i].AdminCode(), fs[j].AdminCode()
		if ci != cj {
			return ci < cj
		}
		return fs[i].Index < fs[j].Index
	})
}
