package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// journalDirName is where the journal lives inside a destination folder.
// The scanner never descends into it.
const journalDirName = ".media-restorer"

// ScanMediaFiles walks basePath and returns one record per media file, in
// walk order. Symlinks are not followed and only regular files are
// considered. Nothing is modified.
func ScanMediaFiles(basePath string, progressChan chan<- ScanProgress) ([]*MediaRecord, error) {
	var (
		records []*MediaRecord
		photos  int
		videos  int
		missing int
	)

	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == basePath {
				return err
			}
			return nil // Skip unreadable entries
		}

		if d.IsDir() {
			if path != basePath && d.Name() == journalDirName {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks, sockets, devices
		if !d.Type().IsRegular() {
			return nil
		}

		if !isMedia(path) {
			return nil
		}
		kind := classify(path)

		rec := &MediaRecord{
			Path:   path,
			Kind:   kind,
			Status: StatusMissingSidecar,
		}
		if info, err := d.Info(); err == nil {
			rec.Size = info.Size()
		}
		if sidecar, ok := findSidecar(path); ok {
			rec.SidecarPath = sidecar
			rec.Status = StatusReady
		} else {
			missing++
		}

		records = append(records, rec)
		if kind == KindPhoto {
			photos++
		} else {
			videos++
		}

		if progressChan != nil {
			select {
			case progressChan <- ScanProgress{
				FilesFound:  len(records),
				PhotosFound: photos,
				VideosFound: videos,
				MissingJSON: missing,
				CurrentFile: path,
			}:
			default:
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", basePath, err)
	}

	return records, nil
}

// countByStatus counts records with the given status
func countByStatus(records []*MediaRecord, status RecordStatus) int {
	count := 0
	for _, r := range records {
		if r.Status == status {
			count++
		}
	}
	return count
}

// countByKind counts records of the given kind
func countByKind(records []*MediaRecord, kind MediaKind) int {
	count := 0
	for _, r := range records {
		if r.Kind == kind {
			count++
		}
	}
	return count
}
