package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

const (
	exifDateLayout  = "2006:01:02 15:04:05"
	videoDateLayout = "2006-01-02T15:04:05"
)

// PhotoInfo is what can be read back from a photo's EXIF block
type PhotoInfo struct {
	CaptureDate *time.Time
	CameraMake  string
	CameraModel string
	Latitude    float64
	Longitude   float64
	HasGPS      bool
}

// readPhotoInfo decodes the EXIF block of a photo. DateTimeOriginal is
// read as UTC.
func readPhotoInfo(path string) (*PhotoInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode exif %s: %w", path, err)
	}

	info := &PhotoInfo{}

	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if s, err := tag.StringVal(); err == nil {
			s = strings.TrimRight(s, "\x00 ")
			if tm, err := time.ParseInLocation(exifDateLayout, s, time.UTC); err == nil {
				info.CaptureDate = &tm
			}
		}
	}

	if makeTag, err := x.Get(exif.Make); err == nil {
		if makeStr, err := makeTag.StringVal(); err == nil {
			info.CameraMake = makeStr
		}
	}

	if model, err := x.Get(exif.Model); err == nil {
		if modelStr, err := model.StringVal(); err == nil {
			info.CameraModel = modelStr
		}
	}

	if lat, long, err := x.LatLong(); err == nil {
		info.Latitude = lat
		info.Longitude = long
		info.HasGPS = true
	}

	return info, nil
}

// readCaptureDate returns only the capture date of a photo
func readCaptureDate(path string) (time.Time, error) {
	info, err := readPhotoInfo(path)
	if err != nil {
		return time.Time{}, err
	}
	if info.CaptureDate == nil {
		return time.Time{}, fmt.Errorf("%s: no DateTimeOriginal tag", path)
	}
	return *info.CaptureDate, nil
}
