package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// appContext carries the state shared by all commands
type appContext struct {
	configFlag   string
	logLevelFlag string

	config *Config
}

// load reads the config file once and applies the global flags
func (a *appContext) load() (*Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	cf, err := loadConfig(getConfigPath(a.configFlag))
	if err != nil {
		return nil, err
	}
	cfg := cf.toConfig()
	if a.logLevelFlag != "" {
		cfg.LogLevel = a.logLevelFlag
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	a.config = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:           "media-restorer",
		Short:         "Restore dates and locations of exported photos and videos from their JSON sidecars",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.configFlag, "config", "c", "", "Configuration file path (default ~/"+configFileName+")")
	rootCmd.PersistentFlags().StringVar(&app.logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newScanCommand(app))
	rootCmd.AddCommand(newRepairCommand(app))
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newHistoryCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

func newScanCommand(app *appContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "List media files and whether a sidecar was found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.load()
			if err != nil {
				return err
			}
			log, closeLog, err := NewLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			engine := NewEngine(nil, nil, nil, log)
			records, err := engine.Scan(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showAll || len(records) <= 50 {
				fmt.Fprintln(out, renderRecords(records))
			}
			printScanSummary(out, records)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAll, "all", false, "List every file even for large folders")
	return cmd
}

func newRepairCommand(app *appContext) *cobra.Command {
	var (
		dest      string
		copySolo  bool
		noTUI     bool
		noJournal bool
	)

	cmd := &cobra.Command{
		Use:   "repair <dir>",
		Short: "Write repaired copies of every media file under <dir> into --dest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.load()
			if err != nil {
				return err
			}
			cfg.ScanPath = args[0]
			if cmd.Flags().Changed("dest") {
				cfg.DestDir = dest
			}
			if cmd.Flags().Changed("copy-solo") {
				cfg.CopySolo = copySolo
			}
			if noJournal {
				cfg.Journal = false
			}
			cfg.NoTUI = noTUI || !isTerminal(os.Stdout)

			if cfg.DestDir == "" {
				return errors.New("no destination: pass --dest or set dest_dir in the config file")
			}

			// The TUI owns the terminal, so logs only go to a file there
			var logOut io.Writer = os.Stderr
			if !cfg.NoTUI {
				logOut = io.Discard
			}
			log, closeLog, err := NewLogger(cfg, logOut)
			if err != nil {
				return err
			}
			defer closeLog()

			engine, closeEngine := buildEngine(cfg, log)
			defer closeEngine()

			if cfg.NoTUI {
				return runCLI(cmd.OutOrStdout(), cfg, engine)
			}
			return runTUI(cfg, engine)
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination folder for repaired files")
	cmd.Flags().BoolVar(&copySolo, "copy-solo", false, "Copy files without a sidecar unchanged")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable TUI, use simple CLI output")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not record this run in the destination journal")
	return cmd
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <photo>",
		Short: "Show the capture date and location embedded in a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := readPhotoInfo(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:         %s\n", args[0])
			if info.CaptureDate != nil {
				fmt.Fprintf(out, "Captured:     %s (epoch %d)\n", info.CaptureDate.Format(exifDateLayout), info.CaptureDate.Unix())
			} else {
				fmt.Fprintf(out, "Captured:     (no DateTimeOriginal)\n")
			}
			if info.CameraMake != "" || info.CameraModel != "" {
				fmt.Fprintf(out, "Camera:       %s %s\n", info.CameraMake, info.CameraModel)
			}
			if info.HasGPS {
				fmt.Fprintf(out, "Location:     %.6f, %.6f\n", info.Latitude, info.Longitude)
			} else {
				fmt.Fprintf(out, "Location:     (none)\n")
			}
			return nil
		},
	}
}

func newHistoryCommand(app *appContext) *cobra.Command {
	var (
		dest  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past repair runs recorded in a destination folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.load()
			if err != nil {
				return err
			}
			if dest == "" {
				dest = cfg.DestDir
			}
			if dest == "" {
				return errors.New("no destination: pass --dest or set dest_dir in the config file")
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(journalPath(dest)); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}

			journal, err := OpenJournal(dest, nil)
			if err != nil {
				return err
			}
			defer journal.Close()

			runs, err := journal.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs, time.Now()))

			failures, err := journal.Attempts(runs[0].ID, AttemptFailed)
			if err != nil {
				return err
			}
			if len(failures) > 0 {
				fmt.Fprintf(out, "\nFailures in latest run (%s):\n", runs[0].ID)
				fmt.Fprintln(out, renderFailures(failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination folder holding the journal")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func newConfigCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create or update the configuration file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runSetupWizard(cmd.InOrStdin(), cmd.OutOrStdout(), getConfigPath(app.configFlag))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := getConfigPath(app.configFlag)
			cfg, err := app.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := path
			if !configExists(path) {
				source = path + " (not found, defaults)"
			}
			fmt.Fprintf(out, "Config file:  %s\n", source)
			fmt.Fprintf(out, "Destination:  %s\n", cfg.DestDir)
			fmt.Fprintf(out, "Copy solo:    %s\n", strconv.FormatBool(cfg.CopySolo))
			fmt.Fprintf(out, "ffmpeg:       %s\n", cfg.FFmpegPath)
			fmt.Fprintf(out, "exiftool:     %s\n", cfg.ExifToolPath)
			fmt.Fprintf(out, "Journal:      %s\n", strconv.FormatBool(cfg.Journal))
			fmt.Fprintf(out, "Log:          %s (%s)\n", cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	})

	return cmd
}

// buildEngine wires the external tools and the journal. A missing tool is
// not fatal here: the records that need it fail one by one instead.
func buildEngine(cfg *Config, log *logrus.Logger) (*Engine, func()) {
	writer, err := NewExifTool(cfg.ExifToolPath)
	if err != nil {
		log.WithError(err).Warn("photos will fail to repair")
		writer = &ExifTool{Path: cfg.ExifToolPath}
	}
	rewriter, err := NewFFmpeg(cfg.FFmpegPath)
	if err != nil {
		log.WithError(err).Warn("videos will fail to repair")
		rewriter = &FFmpeg{Path: cfg.FFmpegPath}
	}

	var journal *Journal
	if cfg.Journal {
		journal, err = OpenJournal(cfg.DestDir, log)
		if err != nil {
			log.WithError(err).Warn("journal disabled")
			journal = nil
		}
	}

	closeFn := func() {
		if journal != nil {
			if err := journal.Close(); err != nil {
				log.WithError(err).Warn("close journal")
			}
		}
	}
	return NewEngine(writer, rewriter, journal, log), closeFn
}

// runCLI scans and repairs with plain line output
func runCLI(out io.Writer, cfg *Config, engine *Engine) error {
	fmt.Fprintln(out, "Media Restorer")
	fmt.Fprintln(out, "==============")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "  Source:       %s\n", cfg.ScanPath)
	fmt.Fprintf(out, "  Destination:  %s\n", cfg.DestDir)
	fmt.Fprintf(out, "  Copy solo:    %t\n", cfg.CopySolo)
	fmt.Fprintf(out, "  Journal:      %t\n", cfg.Journal)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Scanning for media files...")
	records, err := engine.Scan(cfg.ScanPath)
	if err != nil {
		return err
	}
	printScanSummary(out, records)
	fmt.Fprintln(out)

	if len(records) == 0 {
		fmt.Fprintln(out, "No media files found to process.")
		return nil
	}

	fmt.Fprintln(out, "Repairing...")
	progressChan := make(chan ProgressNotification, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for prog := range progressChan {
			percent := float64(prog.Current) * 100 / float64(prog.Total)
			fmt.Fprintf(out, "\r  Progress: [%-50s] %3.0f%% (%d/%d) %-60s",
				progressBar(percent),
				percent,
				prog.Current,
				prog.Total,
				truncateFilePath(prog.Filename, 60))
		}
		fmt.Fprintln(out)
	}()

	report, err := engine.RepairBatch(context.Background(), records, cfg.DestDir, cfg.CopySolo, progressChan)
	close(progressChan)
	<-done
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	printReport(out, report)
	return nil
}

func runTUI(cfg *Config, engine *Engine) error {
	p := tea.NewProgram(initialModel(cfg, engine), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	// Leave the summary on the normal screen once the alt screen is gone
	if m, ok := final.(repairModel); ok && m.report != nil {
		printReport(os.Stdout, m.report)
	}
	return nil
}

// printScanSummary prints the counts of a scan
func printScanSummary(out io.Writer, records []*MediaRecord) {
	var size int64
	for _, r := range records {
		size += r.Size
	}
	fmt.Fprintf(out, "Found %d media files (%s)\n", len(records), humanize.Bytes(uint64(size)))
	fmt.Fprintf(out, "  Photos:        %d\n", countByKind(records, KindPhoto))
	fmt.Fprintf(out, "  Videos:        %d\n", countByKind(records, KindVideo))
	fmt.Fprintf(out, "  Ready:         %d\n", countByStatus(records, StatusReady))
	fmt.Fprintf(out, "  Missing JSON:  %d\n", countByStatus(records, StatusMissingSidecar))
}

// printReport prints the counts of a finished batch and its failures
func printReport(out io.Writer, report *BatchReport) {
	fmt.Fprintf(out, "Repair complete in %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "  Photos fixed:  %d\n", report.FixedPhotos)
	fmt.Fprintf(out, "  Videos fixed:  %d\n", report.FixedVideos)
	fmt.Fprintf(out, "  GPS restored:  %d\n", report.GPSRestored)
	fmt.Fprintf(out, "  Solo copied:   %d\n", report.SoloCopied)
	fmt.Fprintf(out, "  Skipped:       %d\n", report.Skipped)
	fmt.Fprintf(out, "  Failed:        %d\n", report.Failed)

	for i, f := range report.Failures {
		if i >= 10 {
			fmt.Fprintf(out, "  ... and %d more failures (see `history`)\n", len(report.Failures)-10)
			break
		}
		fmt.Fprintf(out, "  ✗ %s: %s\n", f.Path, f.Reason)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
