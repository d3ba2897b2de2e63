package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidecarCandidates(t *testing.T) {
	got := sidecarCandidates(filepath.Join("album", "IMG_1.jpg"))
	assert.Equal(t, []string{
		filepath.Join("album", "IMG_1.jpg.json"),
		filepath.Join("album", "IMG_1.json"),
	}, got)
}

func TestFindSidecar(t *testing.T) {
	dir := t.TempDir()
	media := writeFile(t, filepath.Join(dir, "IMG_1.jpg"), "jpeg")

	t.Run("None", func(t *testing.T) {
		_, ok := findSidecar(media)
		assert.False(t, ok)
	})

	t.Run("StemOnly", func(t *testing.T) {
		stem := writeFile(t, filepath.Join(dir, "IMG_1.json"), "{}")
		got, ok := findSidecar(media)
		require.True(t, ok)
		assert.Equal(t, stem, got)
	})

	t.Run("FullNamePreferred", func(t *testing.T) {
		full := writeFile(t, filepath.Join(dir, "IMG_1.jpg.json"), "{}")
		got, ok := findSidecar(media)
		require.True(t, ok)
		assert.Equal(t, full, got)
	})
}

func TestFindSidecarIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	media := writeFile(t, filepath.Join(dir, "clip.mp4"), "mp4")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "clip.mp4.json"), 0755))

	_, ok := findSidecar(media)
	assert.False(t, ok)
}
