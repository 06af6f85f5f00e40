package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wordmap/internal/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, word string) layout.Record {
	return layout.Record{Name: name, Data: []layout.WordEntry{{Word: word, Color: "rgb(1, 2, 3)"}}}
}

func TestAppendModeDuplicates(t *testing.T) {
	p := filepath.Join(t.TempDir(), "北海道", "wordcloud_layout_detail.json")
	s := NewJSONFile(p, ModeAppend)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, rec("札幌市", "時計台")))
	require.NoError(t, s.Put(ctx, rec("札幌市", "時計台")))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "札幌市", got[0].Name)
	assert.Equal(t, "札幌市", got[1].Name)
}

func TestUpsertModeReplacesInPlace(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.json")
	s := NewJSONFile(p, ModeUpsert)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, rec("札幌市", "時計台")))
	require.NoError(t, s.Put(ctx, rec("小樽市", "運河")))
	require.NoError(t, s.Put(ctx, rec("札幌市", "ラーメン横丁")))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "札幌市", got[0].Name)
	assert.Equal(t, "ラーメン横丁", got[0].Data[0].Word)
	assert.Equal(t, "小樽市", got[1].Name)

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"name\": \"札幌市\"")

	s.SortByName = true
	require.NoError(t, s.Put(ctx, rec("函館市", "イカ")))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"函館市", "小樽市", "札幌市"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestLoadMissingAndBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	got, err := NewJSONFile(filepath.Join(dir, "none.json"), ModeUpsert).Load()
	require.NoError(t, err)
	assert.Empty(t, got)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	err = NewJSONFile(bad, ModeUpsert).Put(context.Background(), rec("a", "b"))
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeUpsert, m)
	m, err = ParseMode("APPEND")
	require.NoError(t, err)
	assert.Equal(t, ModeAppend, m)
	_, err = ParseMode("merge")
	assert.Error(t, err)
}

type failing struct{ closed bool }

func (f *failing) Put(context.Context, layout.Record) error { return errors.New("down") }
func (f *failing) Close() error                             { f.closed = true; return nil }

func TestMultiKeepsWritingAfterFailure(t *testing.T) {
	p := filepath.Join(t.TempDir(), "m.json")
	f := &failing{}
	m := Multi{f, NewJSONFile(p, ModeUpsert)}
	err := m.Put(context.Background(), rec("札幌市", "x"))
	assert.EqualError(t, err, "down")
	got, lerr := NewJSONFile(p, ModeUpsert).Load()
	require.NoError(t, lerr)
	assert.Len(t, got, 1)
	require.NoError(t, m.Close())
	assert.True(t, f.closed)
}
