package main

import (
	"context"
	"fmt"
	"os/exec"
)

// FFmpeg rewrites container-level metadata of videos through the ffmpeg binary
type FFmpeg struct {
	Path string
}

// NewFFmpeg checks that the binary can be found
func NewFFmpeg(path string) (*FFmpeg, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, &ExternalProcessError{Tool: "ffmpeg", ExitCode: -1, Err: fmt.Errorf("not found in PATH: %w", err)}
	}
	return &FFmpeg{Path: resolved}, nil
}

// RewriteCreationTime stream-copies src to dst with a new creation_time.
// dst is overwritten if present.
func (f *FFmpeg) RewriteCreationTime(ctx context.Context, src, dst, creationTime string) error {
	_, err := runTool(ctx, "ffmpeg", f.Path, ffmpegArgs(src, dst, creationTime)...)
	return err
}

// ffmpegArgs builds the ffmpeg command line. Video, audio and subtitle
// streams are copied as is. Data tracks (iPhone mebx/tmcd) are not mapped,
// -c copy cannot mux them into most containers.
func ffmpegArgs(src, dst, creationTime string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", toolPath(src),
		"-map", "0:v",
		"-map", "0:a?",
		"-map", "0:s?",
		"-ignore_unknown",
		"-map_metadata", "0",
		"-metadata", "creation_time=" + creationTime,
		"-c", "copy",
		"-y",
		toolPath(dst),
	}
}
