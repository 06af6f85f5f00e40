package geo

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

const (
	// GeographicProj：N03 数据的地理坐标（JGD2011，椭球 GRS80）
	GeographicProj = "+proj=longlat +ellps=GRS80 +no_defs"
	// DefaultAreaProj：JGD2011 平面直角座標系 IX 系（EPSG:6677）
	DefaultAreaProj = "+proj=tmerc +lat_0=36 +lon_0=139.8333333333333 +k=0.9999 +x_0=0 +y_0=0 +ellps=GRS80 +units=m +no_defs"
)

// AreaFunc：计算一组多边形的面积
type AreaFunc func(polys []Polygon) (float64, error)

// 文档注释：构造投影面积函数
// 背景：经纬度下的面积随纬度失真，按面积比较前先投影到平面坐标系；投影定义可通过 BOUNDARY_AREA_PROJ 替换。
// 约束：projDef 为 proj4 字符串；返回的函数可重复调用，内部只持有不可变的变换。
func ProjectedArea(projDef string) (AreaFunc, error) {
	src, err := proj.Parse(GeographicProj)
	if err != nil {
		return nil, fmt.Errorf("parse geographic proj: %w", err)
	}
	dst, err := proj.Parse(projDef)
	if err != nil {
		return nil, fmt.Errorf("parse area proj %q: %w", projDef, err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("build transform: %w", err)
	}
	return func(polys []Polygon) (float64, error) {
		mp := toGeom(polys)
		if len(mp) == 0 {
			return 0, nil
		}
		g, err := mp.Transform(t)
		if err != nil {
			return 0, err
		}
		pg, ok := g.(geom.Polygonal)
		if !ok {
			return 0, fmt.Errorf("unexpected geometry %T after transform", g)
		}
		return pg.Area(), nil
	}, nil
}

// PlanarArea：直接在输入坐标上计算鞋带面积，外环减去洞；用于已投影数据与测试
func PlanarArea(polys []Polygon) (float64, error) {
	total := 0.0
	for _, p := range polys {
		for i, r := range p.Rings {
			a := math.Abs(ringArea(r))
			if i == 0 {
				total += a
			} else {
				total -= a
			}
		}
	}
	return total, nil
}

func ringArea(r []Point) float64 {
	s := 0.0
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		s += r[j].Lon*r[i].Lat - r[i].Lon*r[j].Lat
	}
	return s / 2
}

func toGeom(polys []Polygon) geom.MultiPolygon {
	mp := make(geom.MultiPolygon, 0, len(polys))
	for _, p := range polys {
		if len(p.Rings) == 0 {
			continue
		}
		gp := make(geom.Polygon, 0, len(p.Rings))
		for _, r := range p.Rings {
			path := make(geom.Path, len(r))
			for i, pt := range r {
				path[i] = geom.Point{X: pt.Lon, Y: pt.Lat}
			}
			gp = append(gp, path)
		}
		mp = append(mp, gp)
	}
	return mp
}
