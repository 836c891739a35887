package t1gars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDigestFile(t *testing.T) {
	a := writeTemp(t, "a", []byte("hello"))
	b := writeTemp(t, "b", []byte("hello"))
	c := writeTemp(t, "c", []byte("world"))

	da, err := digestFile(a)
	require.NoError(t, err)
	db, err := digestFile(b)
	require.NoError(t, err)
	dc, err := digestFile(c)
	require.NoError(t, err)

	assert.Equal(t, da, db, "identical contents share a digest")
	assert.NotEqual(t, da, dc)
}

func TestDigestFileMissing(t *testing.T) {
	_, err := digestFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDigestString(t *testing.T) {
	assert.Equal(t, "00000000000000FF", digestString(0xff))
	assert.Len(t, digestString(^uint64(0)), 16)
}
