package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoRepairer(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "in", "IMG_1.jpg"), "jpeg")
	dest := filepath.Join(dir, "IMG_1.jpg")

	meta, err := ParseSidecar([]byte(sampleSidecar))
	require.NoError(t, err)

	writer := &fakeWriter{}
	repairer := &PhotoRepairer{Writer: writer}
	outcome, err := repairer.Repair(context.Background(), &MediaRecord{Path: src}, meta, dest)
	require.NoError(t, err)

	assert.True(t, outcome.GPSRestored)
	assert.Equal(t, dest, outcome.DestPath)
	require.Len(t, writer.calls, 1)
	assert.Equal(t, "2021:01:01 00:00:00", writer.calls[0].DateTimeOriginal)
	require.NotNil(t, writer.calls[0].GPS)
	assert.Equal(t, meta.Geo, *writer.calls[0].GPS)
	assert.Equal(t, []string{dest}, writer.paths)

	assert.Equal(t, "jpeg|exif:2021:01:01 00:00:00", readFile(t, dest))
	assert.Equal(t, "jpeg", readFile(t, src), "source is never modified")
}

func TestPhotoRepairerNoLocation(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "in", "IMG_1.jpg"), "jpeg")

	meta, err := ParseSidecar([]byte(noLocationSidecar))
	require.NoError(t, err)

	writer := &fakeWriter{}
	outcome, err := (&PhotoRepairer{Writer: writer}).Repair(context.Background(), &MediaRecord{Path: src}, meta, filepath.Join(dir, "IMG_1.jpg"))
	require.NoError(t, err)
	assert.False(t, outcome.GPSRestored)
	require.Len(t, writer.calls, 1)
	assert.Nil(t, writer.calls[0].GPS)
}

func TestPhotoRepairerOnlyLongitude(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "in", "IMG_1.jpg"), "jpeg")
	meta := &SidecarMetadata{TakenAt: 0, Geo: GeoData{Longitude: -0.1278}}

	writer := &fakeWriter{}
	outcome, err := (&PhotoRepairer{Writer: writer}).Repair(context.Background(), &MediaRecord{Path: src}, meta, filepath.Join(dir, "IMG_1.jpg"))
	require.NoError(t, err)
	assert.True(t, outcome.GPSRestored)
	assert.Equal(t, "1970:01:01 00:00:00", writer.calls[0].DateTimeOriginal)
}

func TestPhotoRepairerWriterFails(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "in", "IMG_1.jpg"), "jpeg")
	meta, err := ParseSidecar([]byte(sampleSidecar))
	require.NoError(t, err)

	writer := &fakeWriter{fail: map[string]error{"IMG_1.jpg": &ExternalProcessError{Tool: "exiftool", ExitCode: 1}}}
	outcome, err := (&PhotoRepairer{Writer: writer}).Repair(context.Background(), &MediaRecord{Path: src}, meta, filepath.Join(dir, "IMG_1.jpg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExternalProcess)
	assert.False(t, outcome.GPSRestored)
}

func TestPhotoRepairerMissingSource(t *testing.T) {
	dir := t.TempDir()
	meta, err := ParseSidecar([]byte(sampleSidecar))
	require.NoError(t, err)

	writer := &fakeWriter{}
	_, err = (&PhotoRepairer{Writer: writer}).Repair(context.Background(), &MediaRecord{Path: filepath.Join(dir, "gone.jpg")}, meta, filepath.Join(dir, "out.jpg"))
	assert.ErrorIs(t, err, ErrIO)
	assert.Empty(t, writer.calls)
}

func TestVideoRepairer(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "in", "clip.mp4"), "mp4")
	dest := filepath.Join(dir, "clip.mp4")
	meta, err := ParseSidecar([]byte(sampleSidecar))
	require.NoError(t, err)

	rewriter := &fakeRewriter{}
	outcome, err := (&VideoRepairer{Rewriter: rewriter}).Repair(context.Background(), &MediaRecord{Path: src}, meta, dest)
	require.NoError(t, err)

	assert.False(t, outcome.GPSRestored, "location is never written to videos")
	assert.Equal(t, []string{"2021-01-01T00:00:00"}, rewriter.times)
	assert.Equal(t, "mp4|creation_time=2021-01-01T00:00:00", readFile(t, dest))
}

func TestVideoRepairerToolFails(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "in", "clip.mp4"), "mp4")
	meta, err := ParseSidecar([]byte(sampleSidecar))
	require.NoError(t, err)

	_, err = (&VideoRepairer{Rewriter: &fakeRewriter{fail: errToolExit}}).Repair(context.Background(), &MediaRecord{Path: src}, meta, filepath.Join(dir, "clip.mp4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExternalProcess)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestCopyFilePreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.jpg"), "content")
	require.NoError(t, os.Chmod(src, 0600))

	dst := filepath.Join(dir, "b.jpg")
	require.NoError(t, copyFile(src, dst))
	assert.Equal(t, "content", readFile(t, dst))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
