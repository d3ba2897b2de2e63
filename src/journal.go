package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// AttemptResult is how one record of a batch ended
type AttemptResult string

const (
	AttemptFixed   AttemptResult = "fixed"
	AttemptCopied  AttemptResult = "copied"
	AttemptSkipped AttemptResult = "skipped"
	AttemptFailed  AttemptResult = "failed"
)

// AttemptEntry is one row of the journal
type AttemptEntry struct {
	RunID       string
	Index       int
	MediaPath   string
	SidecarPath string
	DestPath    string
	Kind        MediaKind
	Result      AttemptResult
	GPSRestored bool
	Reason      string
	ProcessedAt time.Time
}

// RunSummary is one past batch as stored in the journal
type RunSummary struct {
	ID          string
	DestDir     string
	CopySolo    bool
	StartedAt   time.Time
	FinishedAt  *time.Time
	Total       int
	FixedPhotos int
	FixedVideos int
	GPSRestored int
	SoloCopied  int
	Skipped     int
	Failed      int
}

// ErrJournalClosed is returned for writes queued after Close
var ErrJournalClosed = errors.New("journal closed")

type journalWrite struct {
	attempt *AttemptEntry
	report  *BatchReport
}

// Journal records every batch attempt in a SQLite database kept inside
// the destination folder
type Journal struct {
	db         *sql.DB
	log        *logrus.Logger
	writeChan  chan journalWrite
	writerDone sync.WaitGroup
	closeOnce  sync.Once

	// mu guards closed and every send on writeChan
	mu     sync.Mutex
	closed bool
}

// journalPath is the database file for destDir
func journalPath(destDir string) string {
	return filepath.Join(destDir, journalDirName, "journal.db")
}

// OpenJournal opens or creates the journal database for destDir
func OpenJournal(destDir string, log *logrus.Logger) (*Journal, error) {
	dbPath := journalPath(destDir)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	// One connection keeps reads and the writer goroutine on the same view
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		dest_dir TEXT NOT NULL,
		copy_solo INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		total INTEGER NOT NULL,
		fixed_photos INTEGER NOT NULL DEFAULT 0,
		fixed_videos INTEGER NOT NULL DEFAULT 0,
		gps_restored INTEGER NOT NULL DEFAULT 0,
		solo_copied INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS attempts (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		media_path TEXT NOT NULL,
		sidecar_path TEXT,
		dest_path TEXT,
		kind TEXT NOT NULL,
		result TEXT NOT NULL,
		gps_restored INTEGER NOT NULL,
		reason TEXT,
		processed_at INTEGER NOT NULL,
		PRIMARY KEY (run_id, idx)
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_result ON attempts(run_id, result);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if log == nil {
		log = discardLogger()
	}

	j := &Journal{
		db:        db,
		log:       log,
		writeChan: make(chan journalWrite, 1000),
	}

	j.writerDone.Add(1)
	go j.writerLoop()

	return j, nil
}

// writerLoop handles all attempt and report writes in a single goroutine
func (j *Journal) writerLoop() {
	defer j.writerDone.Done()

	for req := range j.writeChan {
		var err error
		switch {
		case req.attempt != nil:
			err = j.writeAttempt(req.attempt)
		case req.report != nil:
			err = j.writeReport(req.report)
		}
		if err != nil {
			// Journal is best-effort, a lost row never fails a repair
			j.log.WithError(err).Warn("journal write failed")
		}
	}
}

// Close flushes pending writes and closes the database
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		j.mu.Lock()
		j.closed = true
		close(j.writeChan)
		j.mu.Unlock()
		j.writerDone.Wait()
		err = j.db.Close()
	})
	return err
}

// StartRun registers a new batch. It is written synchronously so the
// attempts queued after it always have a parent row.
func (j *Journal) StartRun(runID, destDir string, copySolo bool, total int, startedAt time.Time) error {
	_, err := j.db.Exec(`
		INSERT INTO runs (id, dest_dir, copy_solo, started_at, total)
		VALUES (?, ?, ?, ?, ?)
	`, runID, destDir, boolToInt(copySolo), startedAt.Unix(), total)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// RecordAttempt queues one attempt for writing (non-blocking)
func (j *Journal) RecordAttempt(entry AttemptEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	select {
	case j.writeChan <- journalWrite{attempt: &entry}:
		return nil
	default:
		return fmt.Errorf("journal write queue full")
	}
}

// FinishRun queues the final counts of a batch
func (j *Journal) FinishRun(report *BatchReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrJournalClosed
	}
	// Blocking send: the totals must land after every queued attempt
	j.writeChan <- journalWrite{report: report}
	return nil
}

func (j *Journal) writeAttempt(e *AttemptEntry) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO attempts
		(run_id, idx, media_path, sidecar_path, dest_path, kind, result, gps_restored, reason, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.Index, e.MediaPath, nullString(e.SidecarPath), nullString(e.DestPath),
		e.Kind.String(), string(e.Result), boolToInt(e.GPSRestored), nullString(e.Reason),
		e.ProcessedAt.Unix())
	return err
}

func (j *Journal) writeReport(r *BatchReport) error {
	_, err := j.db.Exec(`
		UPDATE runs SET finished_at = ?, fixed_photos = ?, fixed_videos = ?,
		       gps_restored = ?, solo_copied = ?, skipped = ?, failed = ?
		WHERE id = ?
	`, r.FinishedAt.Unix(), r.FixedPhotos, r.FixedVideos, r.GPSRestored,
		r.SoloCopied, r.Skipped, r.Failed, r.RunID)
	return err
}

// RecentRuns returns the latest runs, newest first
func (j *Journal) RecentRuns(limit int) ([]RunSummary, error) {
	rows, err := j.db.Query(`
		SELECT id, dest_dir, copy_solo, started_at, finished_at, total,
		       fixed_photos, fixed_videos, gps_restored, solo_copied, skipped, failed
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r          RunSummary
			copySolo   int
			startedAt  int64
			finishedAt sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.DestDir, &copySolo, &startedAt, &finishedAt, &r.Total,
			&r.FixedPhotos, &r.FixedVideos, &r.GPSRestored, &r.SoloCopied, &r.Skipped, &r.Failed); err != nil {
			return nil, err
		}
		r.CopySolo = copySolo != 0
		r.StartedAt = time.Unix(startedAt, 0)
		if finishedAt.Valid {
			ft := time.Unix(finishedAt.Int64, 0)
			r.FinishedAt = &ft
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Attempts returns the attempts of a run with the given result, in batch
// order. An empty result returns every attempt.
func (j *Journal) Attempts(runID string, result AttemptResult) ([]AttemptEntry, error) {
	rows, err := j.db.Query(`
		SELECT idx, media_path, sidecar_path, dest_path, kind, result, gps_restored, reason, processed_at
		FROM attempts
		WHERE run_id = ? AND (? = '' OR result = ?)
		ORDER BY idx
	`, runID, string(result), string(result))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AttemptEntry
	for rows.Next() {
		var (
			e                     AttemptEntry
			sidecar, dest, reason sql.NullString
			kind, res             string
			gps                   int
			processedAt           int64
		)
		if err := rows.Scan(&e.Index, &e.MediaPath, &sidecar, &dest, &kind, &res, &gps, &reason, &processedAt); err != nil {
			return nil, err
		}
		e.RunID = runID
		e.SidecarPath = sidecar.String
		e.DestPath = dest.String
		e.Reason = reason.String
		e.Result = AttemptResult(res)
		e.GPSRestored = gps != 0
		e.ProcessedAt = time.Unix(processedAt, 0)
		if kind == KindVideo.String() {
			e.Kind = KindVideo
		} else if kind == KindPhoto.String() {
			e.Kind = KindPhoto
		} else {
			e.Kind = KindUnknown
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
