package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// 文档注释：从文件加载 GeoJSON 要素集合
// 背景：N03 全国数据与中间产物均为 FeatureCollection；合并脚本产物偶尔是单个 Feature，一并支持。
// 约束：属性与几何的原始 JSON 保留在要素上；无法识别的几何类型保留原文但不产生多边形。
func LoadFeatureCollection(path string) (*FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fc, err := DecodeFeatureCollection(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return fc, nil
}

type rawFeature struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type rawCollection struct {
	Type     string          `json:"type"`
	Features []rawFeature    `json:"features"`
	Props    json.RawMessage `json:"properties"`
	Geometry json.RawMessage `json:"geometry"`
}

// DecodeFeatureCollection：解析 FeatureCollection 或单个 Feature
func DecodeFeatureCollection(r io.Reader) (*FeatureCollection, error) {
	var rc rawCollection
	if err := json.NewDecoder(r).Decode(&rc); err != nil {
		return nil, err
	}
	var raws []rawFeature
	switch strings.ToLower(rc.Type) {
	case "featurecollection":
		raws = rc.Features
	case "feature":
		raws = []rawFeature{{Type: "Feature", Properties: rc.Props, Geometry: rc.Geometry}}
	default:
		return nil, fmt.Errorf("unsupported geojson type %q", rc.Type)
	}
	fc := &FeatureCollection{Features: make([]*Feature, 0, len(raws))}
	for i, rf := range raws {
		feat, err := parseFeature(i, rf)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		fc.Features = append(fc.Features, feat)
	}
	return fc, nil
}

func parseFeature(idx int, rf rawFeature) (*Feature, error) {
	f := &Feature{Index: idx, RawProperties: rf.Properties, RawGeometry: rf.Geometry}
	if len(rf.Properties) > 0 && !isNull(rf.Properties) {
		if err := json.Unmarshal(rf.Properties, &f.Properties); err != nil {
			return nil, fmt.Errorf("properties: %w", err)
		}
	}
	if len(rf.Geometry) > 0 && !isNull(rf.Geometry) {
		var g map[string]any
		if err := json.Unmarshal(rf.Geometry, &g); err != nil {
			return nil, fmt.Errorf("geometry: %w", err)
		}
		f.Polys = polysFromGeometry(g)
	}
	return f, nil
}

func isNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

func polysFromGeometry(g map[string]any) []Polygon {
	switch strings.ToLower(getStr(g, "type")) {
	case "polygon":
		coords, _ := g["coordinates"].([]any)
		return []Polygon{parsePolygon(coords)}
	case "multipolygon":
		coords, _ := g["coordinates"].([]any)
		var out []Polygon
		for _, part := range coords {
			if rings, ok := part.([]any); ok {
				out = append(out, parsePolygon(rings))
			}
		}
		return out
	case "geometrycollection":
		geoms, _ := g["geometries"].([]any)
		var out []Polygon
		for _, it := range geoms {
			if sub, ok := it.(map[string]any); ok {
				out = append(out, polysFromGeometry(sub)...)
			}
		}
		return out
	}
	return nil
}

func parsePolygon(rings []any) Polygon {
	var poly Polygon
	for _, ring := range rings {
		arr, ok := ring.([]any)
		if !ok {
			continue
		}
		rr := make([]Point, 0, len(arr))
		for _, p := range arr {
			if vv, ok := p.([]any); ok && len(vv) >= 2 {
				rr = append(rr, Point{Lon: toFloat(vv[0]), Lat: toFloat(vv[1])})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	poly.BBox = computeBBox(poly)
	return poly
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			if pt.Lon < b[0] {
				b[0] = pt.Lon
			}
			if pt.Lat < b[1] {
				b[1] = pt.Lat
			}
			if pt.Lon > b[2] {
				b[2] = pt.Lon
			}
			if pt.Lat > b[3] {
				b[3] = pt.Lat
			}
		}
	}
	return b
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	default:
		return 0
	}
}
