package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSidecar = `{
  "title": "IMG_0001.jpg",
  "description": "",
  "photoTakenTime": {
    "timestamp": "1609459200",
    "formatted": "Jan 1, 2021, 12:00:00 AM UTC"
  },
  "geoData": {
    "latitude": 48.8584,
    "longitude": 2.2945,
    "altitude": 35.0
  }
}`

const noLocationSidecar = `{
  "title": "clip.mp4",
  "description": "",
  "photoTakenTime": {"timestamp": "1609459200", "formatted": ""},
  "geoData": {"latitude": 0.0, "longitude": 0.0, "altitude": 0.0}
}`

// writeFile creates path (and its parent directories) with content
func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// readFile returns the content of path as a string
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// fakeWriter stands in for exiftool. It appends a marker to the file so
// tests can see the tags reached the destination.
type fakeWriter struct {
	calls    []PhotoTags
	paths    []string
	fail     map[string]error // basename -> error
	progress chan ProgressNotification
	seen     []int // len(progress) at each call
}

func (w *fakeWriter) WriteTags(ctx context.Context, path string, tags PhotoTags) error {
	w.calls = append(w.calls, tags)
	w.paths = append(w.paths, path)
	if w.progress != nil {
		w.seen = append(w.seen, len(w.progress))
	}
	if err, ok := w.fail[filepath.Base(path)]; ok {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "|exif:%s", tags.DateTimeOriginal)
	return err
}

// fakeRewriter stands in for ffmpeg and copies src to dst
type fakeRewriter struct {
	times []string
	fail  error
	empty bool // write a zero-length output
}

func (r *fakeRewriter) RewriteCreationTime(ctx context.Context, src, dst, creationTime string) error {
	r.times = append(r.times, creationTime)
	if r.fail != nil {
		return r.fail
	}
	if r.empty {
		return os.WriteFile(dst, nil, 0644)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append(data, []byte("|creation_time="+creationTime)...), 0644)
}

var errToolExit = &ExternalProcessError{Tool: "ffmpeg", ExitCode: 1, Stderr: "Invalid data found when processing input", Err: errors.New("exit status 1")}
