package wordlist

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordmap/internal/tfidf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spaceNouner：把空白分隔的每个片段当作名词
type spaceNouner struct{}

func (spaceNouner) Nouns(text string) []string { return strings.Fields(text) }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func seed(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func TestBuildWritesPerPrefectureAndAll(t *testing.T) {
	root, out := t.TempDir(), t.TempDir()
	seed(t, root, map[string]string{
		"hokkaido/札幌市.txt":     "味噌 味噌 時計台",
		"hokkaido/余市郡仁木町.txt":  "果物 ワイン",
		"hokkaido/余市郡余市町.txt":  "ウイスキー ワイン",
		"atlantis/海底市.txt":     "神殿",
		"aomori/.keep/ignored": "",
	})
	b := &Builder{Tok: spaceNouner{}, Scorer: tfidf.NewScorer(tfidf.WordListStopwords()), Log: quiet()}
	all, err := b.Build(context.Background(), root, out)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "北海道", all[0].Name)

	raw, err := os.ReadFile(filepath.Join(out, "北海道.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), `{"余市":`), string(raw))

	var got map[string]map[string]float64
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Contains(t, got, "札幌市")
	require.Contains(t, got, "余市")
	assert.NotContains(t, got["札幌市"], "味噌", "stopword removed")
	assert.Contains(t, got["札幌市"], "時計台")
	assert.Greater(t, got["余市"]["ワイン"], got["余市"]["果物"])

	var allOut map[string]map[string]float64
	require.NoError(t, readJSON(filepath.Join(out, "all.json"), &allOut))
	assert.Contains(t, allOut["北海道"], "ワイン")
	_, err = os.Stat(filepath.Join(out, "青森県.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildHonoursCancel(t *testing.T) {
	root := t.TempDir()
	seed(t, root, map[string]string{"tokyo/新宿区.txt": "寿司"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &Builder{Tok: spaceNouner{}, Scorer: tfidf.NewScorer(nil), Log: quiet()}
	_, err := b.Build(ctx, root, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankMergesDistrictsAndSorts(t *testing.T) {
	root := t.TempDir()
	seed(t, root, map[string]string{
		"hokkaido/札幌市.txt":    "a b c",
		"hokkaido/余市郡仁木町.txt": "a b",
		"hokkaido/余市郡余市町.txt": "a b",
		"aomori/青森市.txt":     "a b c d e",
	})
	got, err := Rank(context.Background(), spaceNouner{}, root, quiet())
	require.NoError(t, err)
	assert.Equal(t, []RankEntry{
		{Prefecture: "青森県", Municipality: "青森市", Count: 5},
		{Prefecture: "北海道", Municipality: "余市郡", Count: 4},
		{Prefecture: "北海道", Municipality: "札幌市", Count: 3},
	}, got)

	b, err := json.Marshal(got[:1])
	require.NoError(t, err)
	assert.Equal(t, `[["青森県","青森市",5]]`, string(b))

	var back []RankEntry
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, got[:1], back)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
