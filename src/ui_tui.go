package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type stage int

const (
	stageScanning stage = iota
	stageReview
	stageRepairing
	stageDone
)

var stageNames = []string{"Scan", "Review", "Repair", "Report"}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1).MarginLeft(2)
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1).MarginLeft(2)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	indentStyle  = dimStyle.MarginLeft(2)
	fileStyle    = indentStyle.Italic(true)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).MarginLeft(2)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).MarginLeft(2)
)

// repairModel drives one scan and one repair batch
type repairModel struct {
	config *Config
	engine *Engine
	stage  stage

	spinner spinner.Model
	bar     progress.Model

	records []*MediaRecord
	report  *BatchReport

	latest   ProgressNotification
	updates  chan ProgressNotification
	headline string

	height int
	err    error
}

type scanDoneMsg []*MediaRecord

type batchDoneMsg struct {
	report *BatchReport
}

type batchProgressMsg ProgressNotification

type engineErrMsg struct{ err error }

func initialModel(config *Config, engine *Engine) repairModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = activeStyle

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 50

	return repairModel{
		config:   config,
		engine:   engine,
		stage:    stageScanning,
		spinner:  sp,
		bar:      bar,
		headline: fmt.Sprintf("Looking for media in %s", config.ScanPath),
	}
}

func (m repairModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, scanCmd(m.engine, m.config.ScanPath))
}

func (m repairModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.bar.Width = max(msg.Width-40, 20)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanDoneMsg:
		m.records = msg
		if len(m.records) == 0 {
			m.stage = stageDone
			m.headline = "No media files found"
		} else {
			m.stage = stageReview
			m.headline = fmt.Sprintf("%d media files ready for review", len(m.records))
		}
		return m, nil

	case batchProgressMsg:
		m.latest = ProgressNotification(msg)
		return m, nextProgressCmd(m.updates)

	case batchDoneMsg:
		m.report = msg.report
		m.stage = stageDone
		m.headline = fmt.Sprintf("Complete! %d photos, %d videos fixed, %d failed",
			msg.report.FixedPhotos, msg.report.FixedVideos, msg.report.Failed)
		return m, nil

	case engineErrMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m repairModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch {
	case m.err != nil && (key == "q" || key == "ctrl+c"):
		return m, tea.Quit
	case m.stage == stageRepairing:
		// A running batch always finishes, ctrl+c included
		return m, nil
	case key == "ctrl+c":
		return m, tea.Quit
	case m.stage == stageReview && (key == "y" || key == "enter"):
		m.stage = stageRepairing
		m.headline = fmt.Sprintf("Writing repaired copies to %s", m.config.DestDir)
		m.updates = make(chan ProgressNotification, 100)
		return m, tea.Batch(
			repairCmd(m.engine, m.records, m.config, m.updates),
			nextProgressCmd(m.updates),
		)
	case key == "q", key == "n" && m.stage == stageReview, key == "enter" && m.stage == stageDone:
		return m, tea.Quit
	}
	return m, nil
}

func (m repairModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  q: quit\n", m.err)
	}

	sections := []string{
		"",
		headerStyle.Render("Media Restorer"),
		indentStyle.Render(fmt.Sprintf("%s → %s (%s)",
			truncateFilePath(m.config.ScanPath, 30),
			truncateFilePath(m.config.DestDir, 30),
			m.soloMode())),
		"  " + m.stageBar(),
		m.body(),
		indentStyle.Render(m.help()),
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func (m repairModel) soloMode() string {
	if m.config.CopySolo {
		return "files without sidecar are copied"
	}
	return "files without sidecar are skipped"
}

func (m repairModel) stageBar() string {
	parts := make([]string, len(stageNames))
	for i, name := range stageNames {
		switch {
		case stage(i) == m.stage:
			parts[i] = activeStyle.Render(name)
		case stage(i) < m.stage:
			parts[i] = dimStyle.Render("✓ " + name)
		default:
			parts[i] = dimStyle.Render(name)
		}
	}
	return strings.Join(parts, dimStyle.Render(" → "))
}

func (m repairModel) body() string {
	switch m.stage {
	case stageReview:
		return m.reviewBody()
	case stageRepairing:
		return m.repairBody()
	case stageDone:
		return m.reportBody()
	default:
		return fmt.Sprintf("  %s %s", m.spinner.View(), m.headline)
	}
}

func (m repairModel) reviewBody() string {
	var size int64
	for _, r := range m.records {
		size += r.Size
	}
	missingAction := "skipped"
	if m.config.CopySolo {
		missingAction = "copied unchanged"
	}

	lines := []string{
		fmt.Sprintf("Total: %d files (%s) • Photos: %d • Videos: %d",
			len(m.records), humanize.Bytes(uint64(size)),
			countByKind(m.records, KindPhoto), countByKind(m.records, KindVideo)),
		fmt.Sprintf("With sidecar: %d • Without sidecar: %d (%s)",
			countByStatus(m.records, StatusReady), countByStatus(m.records, StatusMissingSidecar), missingAction),
	}
	return summaryStyle.Render(strings.Join(lines, "\n"))
}

func (m repairModel) repairBody() string {
	out := fmt.Sprintf("  %s %s", m.spinner.View(), m.headline)
	if m.latest.Total == 0 {
		return out
	}
	ratio := float64(m.latest.Current) / float64(m.latest.Total)
	out += fmt.Sprintf("\n\n  %s %3.0f%% (%s)", m.bar.ViewAs(ratio), ratio*100, formatCount(m.latest.Current, m.latest.Total))
	if m.latest.Filename != "" {
		out += "\n\n" + fileStyle.Render(m.latest.Status+": "+m.latest.Filename)
	}
	return out
}

func (m repairModel) reportBody() string {
	out := okStyle.Render("✓ " + m.headline)
	r := m.report
	if r == nil {
		return out
	}

	out += fmt.Sprintf("\n\n  Photos fixed: %d • Videos fixed: %d • GPS restored: %d", r.FixedPhotos, r.FixedVideos, r.GPSRestored)
	out += fmt.Sprintf("\n  Solo copied: %d • Skipped: %d • Failed: %d", r.SoloCopied, r.Skipped, r.Failed)

	limit := max(m.height-20, 3)
	for i, f := range r.Failures {
		if i == limit {
			out += "\n" + failStyle.Render(fmt.Sprintf("... %d more failures", len(r.Failures)-i))
			break
		}
		out += "\n" + failStyle.Render(fmt.Sprintf("✗ %s: %s", truncateFilePath(f.Path, 40), f.Reason))
	}
	return out
}

func (m repairModel) help() string {
	switch m.stage {
	case stageReview:
		return "y/enter: start repair • n/q: cancel"
	case stageRepairing:
		return "repair in progress, quit once it finishes"
	case stageDone:
		return "enter/q: quit"
	default:
		return "q: quit"
	}
}

func scanCmd(engine *Engine, root string) tea.Cmd {
	return func() tea.Msg {
		records, err := engine.Scan(root)
		if err != nil {
			return engineErrMsg{err}
		}
		return scanDoneMsg(records)
	}
}

// repairCmd runs the whole batch and closes updates when it returns
func repairCmd(engine *Engine, records []*MediaRecord, config *Config, updates chan ProgressNotification) tea.Cmd {
	return func() tea.Msg {
		defer close(updates)
		report, err := engine.RepairBatch(context.Background(), records, config.DestDir, config.CopySolo, updates)
		if err != nil {
			return engineErrMsg{err}
		}
		return batchDoneMsg{report: report}
	}
}

// nextProgressCmd waits for the next notification; nil once the batch is over
func nextProgressCmd(updates <-chan ProgressNotification) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-updates
		if !ok {
			return nil
		}
		return batchProgressMsg(n)
	}
}
