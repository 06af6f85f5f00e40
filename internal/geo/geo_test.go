package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square：以 (x,y) 为左下角、边长 s 的闭合正方形 Polygon 几何
func square(x, y, s float64) string {
	return fmt.Sprintf(`{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}`,
		x, y, x+s, y, x+s, y+s, x, y+s, x, y)
}

func feature(props, geom string) string {
	return `{"type":"Feature","properties":` + props + `,"geometry":` + geom + `}`
}

func collection(features ...string) string {
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

func decode(t *testing.T, s string) *FeatureCollection {
	t.Helper()
	fc, err := DecodeFeatureCollection(strings.NewReader(s))
	require.NoError(t, err)
	return fc
}

const hamamatsu = `{"N03_001":"静岡県","N03_002":null,"N03_003":"浜松市","N03_004":"中区","N03_007":"22131"}`

func TestDecodeFeatureCollection(t *testing.T) {
	fc := decode(t, collection(
		feature(hamamatsu, square(0, 0, 1)),
		feature(`{"N03_001":"東京都","N03_004":"新宿区","N03_007":"13104"}`,
			`{"type":"MultiPolygon","coordinates":[[[[0,0],[2,0],[2,2],[0,2],[0,0]],[[0.5,0.5],[1,0.5],[1,1],[0.5,1],[0.5,0.5]]]]}`),
		feature(`null`, `null`),
	))
	require.Len(t, fc.Features, 3)

	f0 := fc.Features[0]
	assert.Equal(t, Code{Prefecture: "静岡県", District: "浜松市", Municipality: "中区"}, f0.Code())
	assert.Equal(t, "22131", f0.AdminCode())
	require.Len(t, f0.Polys, 1)
	assert.Equal(t, [4]float64{0, 0, 1, 1}, f0.Polys[0].BBox)

	f1 := fc.Features[1]
	require.Len(t, f1.Polys, 1)
	assert.Len(t, f1.Polys[0].Rings, 2)

	f2 := fc.Features[2]
	assert.Empty(t, f2.Polys)
	assert.Equal(t, Code{}, f2.Code())
}

func TestDecodeSingleFeature(t *testing.T) {
	fc := decode(t, feature(hamamatsu, square(0, 0, 1)))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "中区", fc.Features[0].Code().Municipality)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := DecodeFeatureCollection(strings.NewReader(`{"type":"Topology"}`))
	require.Error(t, err)
}

func TestReduceKeepsMaxAreaPerCode(t *testing.T) {
	// 三个要素共享四级名称，面积分别为 10、50、20
	props := `{"N03_001":"長崎県","N03_002":null,"N03_003":null,"N03_004":"五島市","N03_007":"42211"}`
	other := `{"N03_001":"長崎県","N03_002":null,"N03_003":null,"N03_004":"長崎市","N03_007":"42201"}`
	fc := decode(t, collection(
		feature(props, square(0, 0, 1)),
		feature(props, square(10, 10, 2)),
		feature(other, square(20, 20, 1)),
		feature(props, square(30, 30, 1.5)),
	))
	areas := map[float64]float64{0: 10, 10: 50, 20: 7, 30: 20}
	fake := func(polys []Polygon) (float64, error) {
		return areas[polys[0].BBox[0]], nil
	}

	out, err := Reduce(fc, fake)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "42201", out[0].AdminCode())
	assert.Equal(t, "42211", out[1].AdminCode())
	assert.Equal(t, 1, out[1].Index)
	assert.InDelta(t, 50, out[1].Area, 1e-9)
}

func TestReduceTieKeepsLowestIndex(t *testing.T) {
	props := `{"N03_001":"沖縄県","N03_004":"竹富町","N03_007":"47381"}`
	fc := decode(t, collection(
		feature(props, square(5, 5, 1)),
		feature(props, square(0, 0, 1)),
	))
	out, err := Reduce(fc, PlanarArea)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Index)
}

func TestReduceEveryGroupHasMaximum(t *testing.T) {
	var feats []string
	sizes := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	for i, s := range sizes {
		props := fmt.Sprintf(`{"N03_001":"県","N03_004":"町%d","N03_007":"%05d"}`, i%3, i%3)
		feats = append(feats, feature(props, square(float64(i*10), 0, s)))
	}
	fc := decode(t, collection(feats...))
	out, err := Reduce(fc, PlanarArea)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, f := range out {
		for _, g := range fc.Features {
			if g.Code() == f.Code() {
				assert.GreaterOrEqual(t, f.Area, g.Area)
			}
		}
	}
}

func TestPlanarAreaSubtractsHoles(t *testing.T) {
	fc := decode(t, collection(feature(`{}`,
		`{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]],[[1,1],[2,1],[2,2],[1,2],[1,1]]]}`)))
	a, err := PlanarArea(fc.Features[0].Polys)
	require.NoError(t, err)
	assert.InDelta(t, 15, a, 1e-9)
}

func TestProjectedAreaNearTokyo(t *testing.T) {
	area, err := ProjectedArea(DefaultAreaProj)
	require.NoError(t, err)
	fc := decode(t, collection(feature(`{}`, square(139.8, 36.0, 0.01))))
	a, err := area(fc.Features[0].Polys)
	require.NoError(t, err)
	// 0.01° × 0.01°：约 1109 m × 901 m
	assert.InEpsilon(t, 1.0e6, a, 0.05)
}

func TestContainsHonoursHoles(t *testing.T) {
	fc := decode(t, collection(feature(`{}`,
		`{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]],[[1,1],[2,1],[2,2],[1,2],[1,1]]]}`)))
	f := fc.Features[0]
	assert.True(t, f.Contains(Point{Lon: 3, Lat: 3}))
	assert.False(t, f.Contains(Point{Lon: 1.5, Lat: 1.5}))
	assert.False(t, f.Contains(Point{Lon: 5, Lat: 5}))
	assert.Same(t, f, fc.Locate(Point{Lon: 0.5, Lat: 3.5}))
	assert.Nil(t, fc.Locate(Point{Lon: -1, Lat: 0}))
}

func TestWriteLineOriented(t *testing.T) {
	fc := decode(t, collection(
		feature(`{"N03_007":"2","name":"<b>"}`, square(0, 0, 1)),
		feature(`{"N03_007":"1"}`, square(1, 1, 1)),
	))
	var buf bytes.Buffer
	require.NoError(t, WriteFeatureCollection(&buf, fc.Features, true))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `{"type":"FeatureCollection","features":[`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `{"type":"Feature","properties":{"N03_007":"2","name":"<b>"},"geometry":{`))
	assert.True(t, strings.HasSuffix(lines[1], ","))
	assert.Equal(t, "]}", lines[3])

	var round map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &round))
	assert.Len(t, round["features"], 2)
}

func TestExtractByRanking(t *testing.T) {
	fc := decode(t, collection(
		feature(`{"N03_003":"札幌市","N03_004":"中央区","N03_007":"01101"}`, square(0, 0, 1)),
		feature(`{"N03_003":null,"N03_004":"函館市","N03_007":"01202"}`, square(0, 0, 1)),
		feature(`{"N03_003":null,"N03_004":"小樽市","N03_007":"01203"}`, square(0, 0, 1)),
	))
	out := ExtractByRanking(fc.Features, []string{"函館市", "札幌市", "小樽市"}, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "01101", out[0].AdminCode())
	assert.Equal(t, "01202", out[1].AdminCode())
}

func TestLoadRankingNames(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rank.json")
	require.NoError(t, os.WriteFile(p, []byte(`[["北海道","札幌市",120],["函館市",80],[3]]`), 0o644))
	names, err := LoadRankingNames(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"札幌市", "函館市"}, names)
}

func TestWriteFileCreatesDirs(t *testing.T) {
	fc := decode(t, collection(feature(`{"N03_007":"1"}`, square(0, 0, 1))))
	p := filepath.Join(t.TempDir(), "a", "b", "out.geojson")
	require.NoError(t, WriteFile(p, fc.Features, false))
	back, err := LoadFeatureCollection(p)
	require.NoError(t, err)
	require.Len(t, back.Features, 1)
	assert.Equal(t, "1", back.Features[0].AdminCode())
}
