package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

// PhotoTags are the EXIF values written into a repaired photo
type PhotoTags struct {
	DateTimeOriginal string   // "2006:01:02 15:04:05"
	GPS              *GeoData // nil when the sidecar has no location
}

// MetadataWriter edits the embedded metadata of a photo in place
type MetadataWriter interface {
	WriteTags(ctx context.Context, path string, tags PhotoTags) error
}

// VideoMetadataRewriter copies a video to dst with a new creation time,
// without re-encoding any stream
type VideoMetadataRewriter interface {
	RewriteCreationTime(ctx context.Context, src, dst, creationTime string) error
}

// Repairer restores sidecar metadata into a copy of one media file
type Repairer interface {
	Repair(ctx context.Context, rec *MediaRecord, meta *SidecarMetadata, destPath string) (RepairOutcome, error)
}

// PhotoRepairer copies the photo and then writes the EXIF tags
type PhotoRepairer struct {
	Writer MetadataWriter
}

func (p *PhotoRepairer) Repair(ctx context.Context, rec *MediaRecord, meta *SidecarMetadata, destPath string) (RepairOutcome, error) {
	outcome := RepairOutcome{DestPath: destPath}

	tags := PhotoTags{
		DateTimeOriginal: meta.TakenTime().Format(exifDateLayout),
	}
	if meta.Geo.HasLocation() {
		geo := meta.Geo
		tags.GPS = &geo
	}

	if err := copyFile(rec.Path, destPath); err != nil {
		return outcome, err
	}

	if err := p.Writer.WriteTags(ctx, destPath, tags); err != nil {
		return outcome, fmt.Errorf("write exif: %w", err)
	}

	outcome.GPSRestored = tags.GPS != nil
	return outcome, nil
}

// VideoRepairer rewrites the container creation time. Location is never
// written to videos.
type VideoRepairer struct {
	Rewriter VideoMetadataRewriter
}

func (v *VideoRepairer) Repair(ctx context.Context, rec *MediaRecord, meta *SidecarMetadata, destPath string) (RepairOutcome, error) {
	outcome := RepairOutcome{DestPath: destPath}

	creationTime := meta.TakenTime().Format(videoDateLayout)
	if err := v.Rewriter.RewriteCreationTime(ctx, rec.Path, destPath, creationTime); err != nil {
		return outcome, fmt.Errorf("rewrite creation time: %w", err)
	}
	return outcome, nil
}

// copyFile copies a file preserving permissions
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("%w: copy %s: %w", ErrIO, src, err)
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
