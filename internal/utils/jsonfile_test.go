package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONKeepsNonASCII(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteJSON(p, map[string]any{"name": "札幌市", "tag": "<a>"}, true))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"札幌市\",\n  \"tag\": \"<a>\"\n}\n", string(b))

	var back map[string]string
	require.NoError(t, ReadJSON(p, &back))
	assert.Equal(t, "札幌市", back["name"])

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not linger")
}

func TestReadJSONMissing(t *testing.T) {
	var v any
	err := ReadJSON(filepath.Join(t.TempDir(), "none.json"), &v)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
