package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column is one table column; numeric columns are right aligned
type column struct {
	title   string
	numeric bool
}

// renderTable draws rows under cols in a rounded box. Short rows are
// padded, extra cells are dropped.
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(cols))
	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header = append(header, c.title)
		cc := table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.numeric {
			cc.Align = text.AlignRight
		}
		configs = append(configs, cc)
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range rows {
		row := make(table.Row, len(cols))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}

// renderRecords lists scan results
func renderRecords(records []*MediaRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		sidecar := "-"
		if r.HasSidecar() {
			sidecar = filepath.Base(r.SidecarPath)
		}
		rows = append(rows, []string{
			truncateFilePath(r.Path, 60),
			r.Kind.String(),
			humanize.Bytes(uint64(r.Size)),
			sidecar,
			r.Status.String(),
		})
	}
	return renderTable([]column{
		{title: "File"},
		{title: "Kind"},
		{title: "Size", numeric: true},
		{title: "Sidecar"},
		{title: "Status"},
	}, rows)
}

// renderRuns lists journal runs
func renderRuns(runs []RunSummary, now time.Time) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "unfinished"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).String()
		}
		rows = append(rows, []string{
			shortID(r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			duration,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.FixedPhotos),
			strconv.Itoa(r.FixedVideos),
			strconv.Itoa(r.GPSRestored),
			strconv.Itoa(r.SoloCopied),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
		})
	}
	cols := []column{{title: "Run"}, {title: "Started"}, {title: "Took"}}
	for _, title := range []string{"Total", "Photos", "Videos", "GPS", "Solo", "Skipped", "Failed"} {
		cols = append(cols, column{title: title, numeric: true})
	}
	return renderTable(cols, rows)
}

// renderFailures lists failed journal attempts with their reason
func renderFailures(entries []AttemptEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			truncateFilePath(e.MediaPath, 50),
			e.Reason,
		})
	}
	return renderTable([]column{{title: "#", numeric: true}, {title: "File"}, {title: "Reason"}}, rows)
}

// progressBar creates a text progress bar
func progressBar(percent float64) string {
	const width = 50
	filled := int(percent / 2) // 50 chars = 100%
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "="
		} else if i == filled {
			bar += ">"
		} else {
			bar += " "
		}
	}
	return bar
}

// truncateFilePath shortens a file path for display
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Show just the filename
	base := filepath.Base(path)
	if len(base) <= maxLen-3 {
		return "..." + base
	}
	return "..." + base[len(base)-maxLen+3:]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatCount renders "n/total" for the TUI header
func formatCount(n, total int) string {
	return fmt.Sprintf("%d/%d", n, total)
}
