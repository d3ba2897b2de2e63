package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderRecords(t *testing.T) {
	out := renderRecords([]*MediaRecord{
		{Path: "/src/IMG_1.jpg", SidecarPath: "/src/IMG_1.jpg.json", Kind: KindPhoto, Size: 2048, Status: StatusReady},
		{Path: "/src/clip.mp4", Kind: KindVideo, Size: 10, Status: StatusMissingSidecar},
	})
	assert.Contains(t, out, "IMG_1.jpg.json")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "Missing JSON")
	assert.Contains(t, out, "Video")
}

func TestRenderRuns(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := now.Add(-time.Hour + 90*time.Second)
	out := renderRuns([]RunSummary{
		{ID: "0123456789abcdef", StartedAt: now.Add(-time.Hour), FinishedAt: &finished, Total: 4, FixedPhotos: 3, Failed: 1},
		{ID: "short", StartedAt: now.Add(-2 * time.Hour), Total: 1},
	}, now)
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "1 hour ago")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "unfinished")
	assert.Contains(t, out, "short")
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, [][]string{{"x"}}))

	out := renderTable([]column{{title: "Name"}, {title: "Count", numeric: true}},
		[][]string{{"short"}, {"photos", "12", "dropped"}})
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Count")
	assert.Contains(t, out, "photos")
	assert.Contains(t, out, "12")
	assert.NotContains(t, out, "dropped")
	assert.NotContains(t, out, "<nil>")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, ">"+strings.Repeat(" ", 49), progressBar(0))
	assert.Equal(t, strings.Repeat("=", 25)+">"+strings.Repeat(" ", 24), progressBar(50))
	assert.Equal(t, strings.Repeat("=", 50), progressBar(100))
}

func TestTruncateFilePath(t *testing.T) {
	assert.Equal(t, "/a/b.jpg", truncateFilePath("/a/b.jpg", 20))
	assert.Equal(t, "...IMG_0001.jpg", truncateFilePath("/very/long/path/to/the/IMG_0001.jpg", 20))
	assert.LessOrEqual(t, len(truncateFilePath("/x/"+strings.Repeat("n", 40)+".jpg", 20)), 20)
}

func TestPrintReport(t *testing.T) {
	report := &BatchReport{Total: 12, FixedPhotos: 1, Failed: 11}
	for i := 0; i < 11; i++ {
		report.Failures = append(report.Failures, RecordFailure{Path: "/src/bad.jpg", Reason: "parse sidecar: missing"})
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "Photos fixed:  1")
	assert.Contains(t, out, "Failed:        11")
	assert.Equal(t, 10, strings.Count(out, "✗"))
	assert.Contains(t, out, "and 1 more failures")
}

func TestPrintScanSummary(t *testing.T) {
	var buf bytes.Buffer
	printScanSummary(&buf, []*MediaRecord{
		{Kind: KindPhoto, Status: StatusReady, Size: 1000},
		{Kind: KindVideo, Status: StatusMissingSidecar, Size: 1000},
	})
	out := buf.String()
	assert.Contains(t, out, "Found 2 media files (2.0 kB)")
	assert.Contains(t, out, "Missing JSON:  1")
}
