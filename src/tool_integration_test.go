package main

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests drive the real binaries and are skipped when they are not
// installed.

func writeTestJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, nil))
	require.NoError(t, f.Close())
}

func TestExifToolRoundTrip(t *testing.T) {
	tool, err := NewExifTool("exiftool")
	if err != nil {
		t.Skip("exiftool not installed")
	}

	src := t.TempDir()
	dest := t.TempDir()
	photo := filepath.Join(src, "IMG_1.jpg")
	writeTestJPEG(t, photo)
	writeFile(t, photo+".json", sampleSidecar)

	engine := NewEngine(tool, nil, nil, nil)
	report, err := engine.RepairBatch(context.Background(), []*MediaRecord{newRecord(photo)}, dest, false, nil)
	require.NoError(t, err)
	require.Empty(t, report.Failures)
	assert.Equal(t, 1, report.FixedPhotos)
	assert.Equal(t, 1, report.GPSRestored)

	out := filepath.Join(dest, "IMG_1.jpg")
	taken, err := readCaptureDate(out)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), taken)

	info, err := readPhotoInfo(out)
	require.NoError(t, err)
	require.True(t, info.HasGPS)
	assert.InDelta(t, 48.8584, info.Latitude, 1e-4)
	assert.InDelta(t, 2.2945, info.Longitude, 1e-4)

	// The source keeps its original, tag-less content
	_, err = readCaptureDate(photo)
	assert.Error(t, err)
}

func TestExifToolRejectsGarbage(t *testing.T) {
	tool, err := NewExifTool("exiftool")
	if err != nil {
		t.Skip("exiftool not installed")
	}

	path := writeFile(t, filepath.Join(t.TempDir(), "fake.jpg"), "this is not a jpeg")
	err = tool.WriteTags(context.Background(), path, PhotoTags{DateTimeOriginal: "2021:01:01 00:00:00"})
	assert.ErrorIs(t, err, ErrExternalProcess)
}

func TestFFmpegRoundTrip(t *testing.T) {
	tool, err := NewFFmpeg("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		t.Skip("ffprobe not installed")
	}

	src := t.TempDir()
	clip := filepath.Join(src, "clip.mp4")
	_, err = runTool(context.Background(), "ffmpeg", tool.Path,
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=64x64:rate=5",
		"-pix_fmt", "yuv420p", "-y", clip)
	if err != nil {
		t.Skipf("ffmpeg cannot synthesize a test clip: %v", err)
	}
	writeFile(t, clip+".json", sampleSidecar)

	dest := t.TempDir()
	engine := NewEngine(nil, tool, nil, nil)
	report, err := engine.RepairBatch(context.Background(), []*MediaRecord{newRecord(clip)}, dest, false, nil)
	require.NoError(t, err)
	require.Empty(t, report.Failures)
	assert.Equal(t, 1, report.FixedVideos)
	assert.Equal(t, 0, report.GPSRestored)

	out, err := runTool(context.Background(), "ffprobe", ffprobe,
		"-v", "error", "-show_entries", "format_tags=creation_time",
		"-of", "default=noprint_wrappers=1:nokey=1", filepath.Join(dest, "clip.mp4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "2021-01-01T00:00:00"), "creation_time is %q", out)
}
