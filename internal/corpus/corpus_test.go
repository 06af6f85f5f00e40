package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func writeFiles(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, b := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
}

func TestLoadSortedAndDecoded(t *testing.T) {
	root := t.TempDir()
	sjis, err := japanese.ShiftJIS.NewEncoder().String("札幌の味噌")
	require.NoError(t, err)
	writeFiles(t, filepath.Join(root, "hokkaido"), map[string][]byte{
		"函館市.txt":  []byte("\xEF\xBB\xBFイカ"),
		"札幌市.txt":  []byte(sjis),
		"notes.md": []byte("ignored"),
	})

	p, err := Load(root, "hokkaido")
	require.NoError(t, err)
	assert.Equal(t, "北海道", p.Name)
	require.Len(t, p.Docs, 2)
	assert.Equal(t, "函館市", p.Docs[0].Name)
	assert.Equal(t, "イカ", p.Docs[0].Text)
	assert.Equal(t, "札幌の味噌", p.Docs[1].Text)
	assert.Equal(t, "イカ\n札幌の味噌\n", p.Joined())
	assert.Equal(t, []string{"イカ", "札幌の味噌"}, p.Texts())
}

func TestLoadEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "unknown"), 0o755))
	p, err := Load(root, "unknown")
	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.Equal(t, "unknown", p.Name)
}

func TestGroupForWordList(t *testing.T) {
	p := &Prefecture{Docs: []Document{
		{Name: "余市郡仁木町", Text: "a"},
		{Name: "札幌市", Text: "b"},
		{Name: "余市郡余市町", Text: "c"},
		{Name: "中央区", Text: "d"},
		{Name: "利尻富士町", Text: "e"},
	}}
	got := p.GroupForWordList()
	assert.Equal(t, []Document{
		{Name: "余市", Text: "a\nc\n"},
		{Name: "札幌市", Text: "b"},
		{Name: "中央区", Text: "d"},
		{Name: "利尻富士町", Text: "e\n"},
	}, got)
}

func TestGroupForRanking(t *testing.T) {
	p := &Prefecture{Docs: []Document{
		{Name: "余市郡仁木町", Text: "a"},
		{Name: "札幌市", Text: "b"},
		{Name: "余市郡余市町", Text: "c"},
	}}
	assert.Equal(t, []Document{
		{Name: "余市郡", Text: "a\nc\n"},
		{Name: "札幌市", Text: "b\n"},
	}, p.GroupForRanking())
}

func TestListKeys(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"tokyo", "aichi", ".cache"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.txt"), nil, 0o644))
	keys, err := ListKeys(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"aichi", "tokyo"}, keys)
}
