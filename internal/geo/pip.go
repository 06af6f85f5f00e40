package geo

// 文档注释：点入多边形判定（Even-Odd）
// 背景：栅格化使用同一奇偶规则做扫描线填充；此处的逐点判定用于要素命中查询与栅格结果校验。
// 约束：输入为经纬度坐标；落在边上的点结果不稳定，调用方不应依赖边界上的判定。
func pointInPoly(pt Point, poly Polygon) bool {
	if len(poly.Rings) == 0 {
		return false
	}
	if !inBBox(pt, poly.BBox) || !pointInRing(pt, poly.Rings[0]) {
		return false
	}
	for i := 1; i < len(poly.Rings); i++ {
		if pointInRing(pt, poly.Rings[i]) {
			return false
		}
	}
	return true
}

// 射线法判定点是否在环内
func pointInRing(pt Point, ring []Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// 快速包围盒过滤
func inBBox(pt Point, b [4]float64) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}

// Contains：点是否落在要素任一多边形内
func (f *Feature) Contains(pt Point) bool {
	for _, p := range f.Polys {
		if pointInPoly(pt, p) {
			return true
		}
	}
	return false
}

// Locate：返回第一个包含该点的要素，未命中返回 nil
func (fc *FeatureCollection) Locate(pt Point) *Feature {
	for _, f := range fc.Features {
		if f.Contains(pt) {
			return f
		}
	}
	return nil
}
