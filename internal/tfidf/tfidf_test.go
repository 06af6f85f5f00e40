package tfidf

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSmoothIDFAndMean(t *testing.T) {
	s := NewScorer(nil)
	got, err := s.Score([]string{"ラーメン 東京 東京", "東京 大阪"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "東京", got[0].Word)
	assert.InDelta(t, 0.698959, got[0].Score, 1e-5)
	assert.Equal(t, "大阪", got[1].Word)
	assert.InDelta(t, 0.407401, got[1].Score, 1e-5)
	assert.Equal(t, "ラーメン", got[2].Word)
	assert.InDelta(t, 0.287481, got[2].Score, 1e-5)
}

func TestScoreDropsStopwordsAndDigits(t *testing.T) {
	s := NewScorer(LayoutStopwords())
	got, err := s.Score([]string{"ラーメン 居酒屋 札幌 札幌 2024 小樽"})
	require.NoError(t, err)
	words := make([]string, 0, len(got))
	for _, ts := range got {
		words = append(words, ts.Word)
		assert.GreaterOrEqual(t, ts.Score, 0.0)
	}
	assert.Equal(t, []string{"札幌", "小樽"}, words)
}

func TestScoreSortedAndCapped(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		for j := 0; j <= i%7; j++ {
			fmt.Fprintf(&sb, "語%03d ", i)
		}
	}
	got, err := NewScorer(nil).Score([]string{sb.String(), "語001 語002"})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), DefaultMaxFeatures)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		ok := prev.Score > cur.Score || (prev.Score == cur.Score && prev.Word < cur.Word)
		assert.True(t, ok, "order at %d", i)
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	for _, docs := range [][]string{nil, {""}, {"", ""}} {
		got, err := NewScorer(nil).Score(docs)
		require.NoError(t, err)
		assert.Empty(t, got)
	}

	_, err := NewScorer(nil).Score([]string{"a b c"})
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestScoreKeepsLaterDocumentsWhenFirstIsEmpty(t *testing.T) {
	got, err := NewScorer(nil).Score([]string{"", "ジンギスカン 時計台 ジンギスカン", "運河 小樽"})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "ジンギスカン", got[0].Word)
	// 空文档也计入文档数：idf 相同，均值除以 3
	assert.InDelta(t, 2/math.Sqrt(5)/3, got[0].Score, 1e-9)
	assert.InDelta(t, 1/math.Sqrt(2)/3, Lookup(got, "運河"), 1e-9)
}

func TestTokeniserLowercasesAndNeedsTwoRunes(t *testing.T) {
	assert.Equal(t, []string{"abc", "東京"}, wordTokeniser{}.Tokenise("ABC x 東京 寿"))
}

func TestStopwordSets(t *testing.T) {
	layout := LayoutStopwords()
	assert.True(t, layout.Has("讃岐"))
	assert.False(t, layout.Has("温泉"))

	wl := WordListStopwords()
	assert.True(t, wl.Has("温泉"))
	assert.True(t, wl.Has("北海道"))
	assert.True(t, wl.Has("大阪"))
	assert.False(t, wl.Has("讃岐"))

	var none Stopwords
	assert.False(t, none.Has("店"))
}

func TestStopwordsWithFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "stop.txt")
	require.NoError(t, os.WriteFile(p, []byte("# comment\n小樽\n\n  函館 \n"), 0o644))
	s, err := NewStopwords().WithFile(p)
	require.NoError(t, err)
	assert.True(t, s.Has("小樽"))
	assert.True(t, s.Has("函館"))
	assert.Len(t, s, 2)

	same, err := s.WithFile("")
	require.NoError(t, err)
	assert.Len(t, same, 2)
}

func TestScoresJSONKeepsOrder(t *testing.T) {
	in := Scores{{Word: "札幌", Score: 0.5}, {Word: "ab", Score: 0.25}, {Word: "小樽", Score: 0.125}}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"札幌":0.5,"ab":0.25,"小樽":0.125}`, string(b))

	var back Scores
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, in, back)
	assert.Equal(t, 0.25, back.Map()["ab"])

	empty, err := json.Marshal(Scores(nil))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}
