package geo

import "encoding/json"

// 文档注释：行政区边界的最小数据结构
// 背景：国土数值情報 N03 数据以 N03_001〜N03_004 四级名称标识市区町村，N03_007 为行政区划代码；
// 同一行政区常被拆成多个要素（离岛、飞地），缩减阶段按四级名称分组只保留面积最大者。
// 约束：几何仅支持 GeoJSON 的 Polygon/MultiPolygon；每个多边形的第一环为外环，其余为洞。
type Feature struct {
	// Index：在源文件中的序号，面积相同时序号小者胜出
	Index int
	// RawProperties / RawGeometry：原样保留，输出时不经过重新编码以免坐标精度漂移
	RawProperties json.RawMessage
	RawGeometry   json.RawMessage
	Properties    map[string]any
	Polys         []Polygon
	// Area：投影坐标系下的面积（平方米），由 Reduce 填充
	Area float64
}

// Code：四级行政区名称元组（都道府県 / 支庁・振興局 / 郡・政令市 / 市区町村）
type Code struct {
	Prefecture    string
	SubPrefecture string
	District      string
	Municipality  string
}

// Polygon：按 GeoJSON 约定的环集合，第一环是外环，其后为洞
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// 点坐标（经纬度）
type Point struct {
	Lat float64
	Lon float64
}

// FeatureCollection：加载结果，要素顺序与源文件一致
type FeatureCollection struct {
	Features []*Feature
}

// Code：读取 N03_001〜N03_004；null 与缺失一律视为空串
func (f *Feature) Code() Code {
	return Code{
		Prefecture:    f.Prop("N03_001"),
		SubPrefecture: f.Prop("N03_002"),
		District:      f.Prop("N03_003"),
		Municipality:  f.Prop("N03_004"),
	}
}

// AdminCode：N03_007 行政区划代码，用作输出排序键
func (f *Feature) AdminCode() string { return f.Prop("N03_007") }

func (f *Feature) Prop(key string) string { return getStr(f.Properties, key) }

// Bounds：全部多边形的经纬度包围盒；无几何时 ok=false
func (f *Feature) Bounds() (b [4]float64, ok bool) {
	return boundsOf(f.Polys)
}

// Bounds：整个集合的包围盒
func (fc *FeatureCollection) Bounds() (b [4]float64, ok bool) {
	var polys []Polygon
	for _, f := range fc.Features {
		polys = append(polys, f.Polys...)
	}
	return boundsOf(polys)
}

func boundsOf(polys []Polygon) ([4]float64, bool) {
	b := [4]float64{180, 90, -180, -90}
	ok := false
	for _, p := range polys {
		if len(p.Rings) == 0 || len(p.Rings[0]) == 0 {
			continue
		}
		ok = true
		if p.BBox[0] < b[0] {
			b[0] = p.BBox[0]
		}
		if p.BBox[1] < b[1] {
			b[1] = p.BBox[1]
		}
		if p.BBox[2] > b[2] {
			b[2] = p.BBox[2]
		}
		if p.BBox[3] > b[3] {
			b[3] = p.BBox[3]
		}
	}
	return b, ok
}
