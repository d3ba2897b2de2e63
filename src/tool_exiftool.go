package main

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var reFilesUpdated = regexp.MustCompile(`(\d+) image files? updated`)

// ExifTool writes embedded photo metadata through the exiftool binary
type ExifTool struct {
	Path string
}

// NewExifTool checks that the binary can be found
func NewExifTool(path string) (*ExifTool, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, &ExternalProcessError{Tool: "exiftool", ExitCode: -1, Err: fmt.Errorf("not found in PATH: %w", err)}
	}
	return &ExifTool{Path: resolved}, nil
}

// WriteTags rewrites the file at path in place with the given tags
func (et *ExifTool) WriteTags(ctx context.Context, path string, tags PhotoTags) error {
	out, err := runTool(ctx, "exiftool", et.Path, exifToolArgs(path, tags)...)
	if err != nil {
		return err
	}

	m := reFilesUpdated.FindStringSubmatch(out)
	if m == nil {
		return &ExternalProcessError{Tool: "exiftool", ExitCode: 0, Stderr: out, Err: fmt.Errorf("no update reported")}
	}
	if n, _ := strconv.Atoi(m[1]); n < 1 {
		return &ExternalProcessError{Tool: "exiftool", ExitCode: 0, Stderr: out, Err: fmt.Errorf("file left unchanged")}
	}
	return nil
}

// exifToolArgs builds the exiftool command line for one file
func exifToolArgs(path string, tags PhotoTags) []string {
	args := []string{
		"-overwrite_original",
		"-DateTimeOriginal=" + tags.DateTimeOriginal,
	}

	if tags.GPS != nil {
		latRef, lonRef, altRef := "N", "E", "0"
		if tags.GPS.Latitude < 0 {
			latRef = "S"
		}
		if tags.GPS.Longitude < 0 {
			lonRef = "W"
		}
		if tags.GPS.Altitude < 0 {
			altRef = "1" // below sea level
		}
		args = append(args,
			"-GPSLatitude="+formatCoord(tags.GPS.Latitude),
			"-GPSLatitudeRef="+latRef,
			"-GPSLongitude="+formatCoord(tags.GPS.Longitude),
			"-GPSLongitudeRef="+lonRef,
			"-GPSAltitude="+formatCoord(tags.GPS.Altitude),
			"-GPSAltitudeRef#="+altRef,
		)
	}

	return append(args, toolPath(path))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
}

// toolPath keeps a file name starting with "-" from being read as an option
func toolPath(path string) string {
	if strings.HasPrefix(path, "-") {
		return "." + string(filepath.Separator) + path
	}
	return path
}
