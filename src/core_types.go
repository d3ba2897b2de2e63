package main

import (
	"time"
)

// MediaKind represents the kind of media file
type MediaKind int

const (
	KindPhoto MediaKind = iota
	KindVideo
	KindUnknown
)

func (k MediaKind) String() string {
	return [...]string{"Photo", "Video", "Unknown"}[k]
}

// RecordStatus tells whether a sidecar was found for a media file
type RecordStatus int

const (
	StatusReady RecordStatus = iota
	StatusMissingSidecar
)

func (s RecordStatus) String() string {
	return [...]string{"Ready", "Missing JSON"}[s]
}

// MediaRecord is one media file found by the scanner
type MediaRecord struct {
	Path        string
	SidecarPath string // empty when no sidecar exists
	Kind        MediaKind
	Size        int64
	Status      RecordStatus
}

// HasSidecar reports whether the record was paired with a sidecar
func (r *MediaRecord) HasSidecar() bool {
	return r.SidecarPath != ""
}

// GeoData holds the coordinates from a sidecar
type GeoData struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
}

// HasLocation reports whether the coordinates are a real point.
// (0,0) is what the export tool writes when it has no location.
func (g GeoData) HasLocation() bool {
	return g.Latitude != 0 || g.Longitude != 0
}

// SidecarMetadata is the decoded content of a sidecar file
type SidecarMetadata struct {
	Title       string
	Description string
	TakenAt     int64  // epoch seconds
	TakenAtText string // "formatted" field, informational only
	Geo         GeoData
}

// TakenTime returns the capture instant in UTC
func (m *SidecarMetadata) TakenTime() time.Time {
	return time.Unix(m.TakenAt, 0).UTC()
}

// RepairOutcome is what a successful repair reports back
type RepairOutcome struct {
	GPSRestored bool
	DestPath    string
}

// RecordFailure keeps the reason a record could not be repaired
type RecordFailure struct {
	Path   string
	Reason string
}

// BatchReport aggregates the result of one repair batch
type BatchReport struct {
	RunID       string
	Total       int
	FixedPhotos int
	FixedVideos int
	GPSRestored int
	SoloCopied  int
	Skipped     int
	Failed      int
	Failures    []RecordFailure
	StartedAt   time.Time
	FinishedAt  time.Time
}

// ProgressNotification is sent once per record, before it is attempted
type ProgressNotification struct {
	Current  int
	Total    int
	Filename string
	Status   string
}

// ScanProgress tracks scanning progress
type ScanProgress struct {
	FilesFound  int
	PhotosFound int
	VideosFound int
	MissingJSON int
	CurrentFile string
}

// Config holds application configuration
type Config struct {
	ScanPath     string
	DestDir      string
	CopySolo     bool
	FFmpegPath   string
	ExifToolPath string
	Journal      bool
	LogLevel     string
	LogFormat    string
	LogFile      string
	NoTUI        bool
}
