package dissolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sq = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`

func input(t *testing.T) *geo.FeatureCollection {
	t.Helper()
	var parts []string
	for _, p := range []string{"北海道", "青森県", "北海道", "", "岩手県"} {
		props := `{"N03_001":null}`
		if p != "" {
			props = fmt.Sprintf(`{"N03_001":%q}`, p)
		}
		parts = append(parts, fmt.Sprintf(`{"type":"Feature","properties":%s,"geometry":%s}`, props, sq))
	}
	fc, err := geo.DecodeFeatureCollection(strings.NewReader(`{"type":"FeatureCollection","features":[` + strings.Join(parts, ",") + `]}`))
	require.NoError(t, err)
	return fc
}

type fakeRunner struct {
	calls  [][]string
	inputs map[string]int
	fail   string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	in, out := args[0], args[len(args)-2]
	fc, err := geo.LoadFeatureCollection(in)
	if err != nil {
		return nil, err
	}
	pref := fc.Features[0].Prop("N03_001")
	r.inputs[pref] = len(fc.Features)
	if pref == r.fail {
		return []byte("boom"), errors.New("exit status 1")
	}
	body := fmt.Sprintf(`{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"N03_001":%q},"geometry":%s}]}`, pref, sq)
	return nil, os.WriteFile(out, []byte(body), 0o644)
}

func TestRunDissolvesPerPrefecture(t *testing.T) {
	tmp := t.TempDir()
	r := &fakeRunner{inputs: map[string]int{}, fail: "青森県"}
	d := &Dissolver{
		Bin:     "mapshaper",
		OutDir:  filepath.Join(t.TempDir(), "out"),
		TempDir: tmp,
		Runner:  r,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	res, err := d.Run(context.Background(), input(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"北海道", "青森県", "岩手県"}, res.Prefectures)
	assert.Equal(t, map[string]int{"北海道": 2, "青森県": 1, "岩手県": 1}, r.inputs)
	assert.Equal(t, []string{"青森県"}, res.Missing)
	require.Len(t, res.Features, 2)
	assert.Equal(t, "北海道", res.Features[0].Prop("N03_001"))
	assert.Equal(t, "岩手県", res.Features[1].Prop("N03_001"))

	require.Len(t, r.calls, 3)
	assert.Equal(t, "mapshaper", r.calls[0][0])
	assert.Equal(t, []string{"-clean", "snap-interval=0.001", "overlap-rule=max-id", "-dissolve", "N03_001", "copy-fields=N03_001", "-o", d.OutputPath("北海道"), "format=geojson"}, r.calls[0][2:])

	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPartitionDropsMissingPrefecture(t *testing.T) {
	order, groups := Partition(input(t).Features)
	assert.Equal(t, []string{"北海道", "青森県", "岩手県"}, order)
	assert.Len(t, groups["北海道"], 2)
	assert.NotContains(t, groups, "")
}
