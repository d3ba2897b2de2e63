package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const statusProcessing = "processing"

// Engine scans export folders and repairs their media files
type Engine struct {
	repairers map[MediaKind]Repairer
	journal   *Journal
	log       *logrus.Logger
	now       func() time.Time
}

// NewEngine wires the photo and video repairers. journal may be nil.
func NewEngine(writer MetadataWriter, rewriter VideoMetadataRewriter, journal *Journal, log *logrus.Logger) *Engine {
	if log == nil {
		log = discardLogger()
	}
	return &Engine{
		repairers: map[MediaKind]Repairer{
			KindPhoto: &PhotoRepairer{Writer: writer},
			KindVideo: &VideoRepairer{Rewriter: rewriter},
		},
		journal: journal,
		log:     log,
		now:     time.Now,
	}
}

// Scan lists the media files under root with their sidecar status
func (e *Engine) Scan(root string) ([]*MediaRecord, error) {
	records, err := ScanMediaFiles(root, nil)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"root":    root,
		"files":   len(records),
		"missing": countByStatus(records, StatusMissingSidecar),
	}).Info("scan complete")
	return records, nil
}

// RepairBatch repairs records one at a time, in order, into destDir.
// A failing record is counted and the batch moves on; an error is only
// returned when destDir itself is unusable.
func (e *Engine) RepairBatch(ctx context.Context, records []*MediaRecord, destDir string, copySolo bool, progressChan chan<- ProgressNotification) (*BatchReport, error) {
	if err := prepareDest(destDir); err != nil {
		return nil, err
	}

	total := len(records)
	report := &BatchReport{
		RunID:     uuid.NewString(),
		Total:     total,
		StartedAt: e.now(),
	}
	planner := newDestPlanner(destDir)

	runLog := e.log.WithField("run", report.RunID)
	if e.journal != nil {
		if err := e.journal.StartRun(report.RunID, destDir, copySolo, total, report.StartedAt); err != nil {
			runLog.WithError(err).Warn("journal unavailable for this run")
		}
	}
	runLog.WithFields(logrus.Fields{"dest": destDir, "records": total, "copy_solo": copySolo}).Info("repair started")

	for i, rec := range records {
		filename := ""
		if rec != nil {
			filename = filepath.Base(rec.Path)
		}

		if progressChan != nil {
			select {
			case progressChan <- ProgressNotification{
				Current:  i + 1,
				Total:    total,
				Filename: filename,
				Status:   statusProcessing,
			}:
			default:
			}
		}

		result, outcome, err := e.repairRecord(ctx, rec, planner, copySolo)
		entry := AttemptEntry{
			RunID:       report.RunID,
			Index:       i + 1,
			Result:      result,
			DestPath:    outcome.DestPath,
			GPSRestored: outcome.GPSRestored,
			Kind:        KindUnknown,
			ProcessedAt: e.now(),
		}
		if err != nil {
			entry.Reason = err.Error()
		}
		if rec != nil {
			entry.MediaPath = rec.Path
			entry.SidecarPath = rec.SidecarPath
			entry.Kind = classify(rec.Path)
		}

		fields := logrus.Fields{"file": entry.MediaPath, "dest": entry.DestPath, "kind": entry.Kind}
		switch result {
		case AttemptFailed:
			report.Failed++
			report.Failures = append(report.Failures, RecordFailure{Path: entry.MediaPath, Reason: entry.Reason})
			runLog.WithFields(fields).WithError(err).Warn("repair failed")
		case AttemptFixed:
			if isVideo(entry.MediaPath) {
				report.FixedVideos++
			} else {
				report.FixedPhotos++
			}
			if outcome.GPSRestored {
				report.GPSRestored++
			}
			runLog.WithFields(fields).WithField("gps", outcome.GPSRestored).Debug("repaired")
		case AttemptCopied:
			report.SoloCopied++
			runLog.WithFields(fields).Debug("copied without sidecar")
		case AttemptSkipped:
			report.Skipped++
			runLog.WithFields(fields).Debug("skipped, no sidecar")
		}

		if e.journal != nil {
			if err := e.journal.RecordAttempt(entry); err != nil {
				runLog.WithError(err).Warn("journal entry dropped")
			}
		}
	}

	report.FinishedAt = e.now()
	if e.journal != nil {
		if err := e.journal.FinishRun(report); err != nil {
			runLog.WithError(err).Warn("journal totals dropped")
		}
	}

	runLog.WithFields(logrus.Fields{
		"photos":  report.FixedPhotos,
		"videos":  report.FixedVideos,
		"gps":     report.GPSRestored,
		"solo":    report.SoloCopied,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("repair finished")

	return report, nil
}

// repairRecord runs sidecar parsing, repair and verification for one
// record as a single unit. Output is produced under a staging name and
// only renamed onto the destination once the repair succeeded, so a
// failed attempt never leaves a half-written file behind.
func (e *Engine) repairRecord(ctx context.Context, rec *MediaRecord, planner *destPlanner, copySolo bool) (AttemptResult, RepairOutcome, error) {
	if rec == nil {
		return AttemptFailed, RepairOutcome{}, errors.New("nil record")
	}

	if !rec.HasSidecar() {
		if !copySolo {
			return AttemptSkipped, RepairOutcome{}, ErrSidecarNotFound
		}
		dest := planner.plan(rec.Path)
		err := produce(dest, func(staging string) error {
			return copyFile(rec.Path, staging)
		})
		if err != nil {
			return AttemptFailed, RepairOutcome{DestPath: dest}, err
		}
		return AttemptCopied, RepairOutcome{DestPath: dest}, nil
	}

	kind := classify(rec.Path)
	repairer, ok := e.repairers[kind]
	if !ok {
		return AttemptFailed, RepairOutcome{}, fmt.Errorf("%s: unsupported media type", rec.Path)
	}

	meta, err := LoadSidecar(rec.SidecarPath)
	if err != nil {
		return AttemptFailed, RepairOutcome{}, err
	}

	dest := planner.plan(rec.Path)
	var outcome RepairOutcome
	err = produce(dest, func(staging string) error {
		var err error
		outcome, err = repairer.Repair(ctx, rec, meta, staging)
		return err
	})
	outcome.DestPath = dest
	if err != nil {
		outcome.GPSRestored = false
		return AttemptFailed, outcome, err
	}
	return AttemptFixed, outcome, nil
}

// produce lets write create the output at a staging path next to dest,
// then moves it into place and verifies it
func produce(dest string, write func(staging string) error) error {
	staging := stagingPath(dest)
	if err := write(staging); err != nil {
		os.Remove(staging)
		return err
	}
	if err := os.Rename(staging, dest); err != nil {
		os.Remove(staging)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := verifyOutput(dest); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

// stagingPath keeps the extension so tools still detect the format
func stagingPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), ".partial-"+filepath.Base(dest))
}

// prepareDest makes sure destDir is a usable directory
func prepareDest(destDir string) error {
	if destDir == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidDest)
	}

	info, err := os.Stat(destDir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDest, destDir)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(destDir, 0755); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDest, err)
		}
	case err != nil:
		return fmt.Errorf("%w: %w", ErrInvalidDest, err)
	}
	return nil
}
