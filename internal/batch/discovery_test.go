package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
}

func TestDiscover_TopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.png", "a.png", "notes.txt", "nested/c.png")

	paths, err := Discover(dir, false, "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
	}, paths)
}

func TestDiscover_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.png", "nested/c.png", "nested/deep/d.jpg")

	paths, err := Discover(dir, true, "")
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	assert.Contains(t, paths, filepath.Join(dir, "nested", "deep", "d.jpg"))
}

func TestDiscover_Pattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "0600_UTC_Tue_02_JAN_mask.png", "overlay.png")

	paths, err := Discover(dir, false, "*_mask.png")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "0600_UTC_Tue_02_JAN_mask.png")}, paths)
}

func TestDiscover_SkipsUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "chart.tiff", "chart.pdf", "chart.bmp")

	paths, err := Discover(dir, false, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "chart.bmp")}, paths)
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"), false, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestDiscover_FileInsteadOfDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.png")

	_, err := Discover(filepath.Join(dir, "a.png"), false, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
