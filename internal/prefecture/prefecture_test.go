package prefecture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableIsComplete(t *testing.T) {
	ps := All()
	require.Len(t, ps, 47)
	seen := map[string]bool{}
	for _, p := range ps {
		assert.False(t, seen[p.Key], "duplicate key %s", p.Key)
		seen[p.Key] = true
	}
}

func TestLookups(t *testing.T) {
	p, ok := ByKey("OSAKA")
	require.True(t, ok)
	assert.Equal(t, "大阪府", p.Name)
	assert.Equal(t, "大阪", p.ShortName())

	p, ok = ByName("北海道")
	require.True(t, ok)
	assert.Equal(t, "hokkaido", p.Key)
	assert.Equal(t, "北海道", p.ShortName())

	_, ok = ByKey("atlantis")
	assert.False(t, ok)
}

func TestShortNames(t *testing.T) {
	names := ShortNames()
	assert.Contains(t, names, "東京")
	assert.Contains(t, names, "京都")
	assert.Contains(t, names, "北海道")
	assert.NotContains(t, names, "東京都")
}
