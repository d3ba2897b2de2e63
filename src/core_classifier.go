package main

import (
	"path/filepath"
	"strings"
)

var (
	photoExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".heic": true,
		".webp": true, ".gif": true, ".tiff": true, ".bmp": true,
	}

	videoExtensions = map[string]bool{
		".mp4": true, ".mov": true, ".m4v": true,
		".mkv": true, ".avi": true, ".wmv": true,
	}
)

// classify detects the kind of media file from its extension
func classify(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))

	if photoExtensions[ext] {
		return KindPhoto
	}
	if videoExtensions[ext] {
		return KindVideo
	}
	return KindUnknown
}

// isMedia reports whether path has a supported photo or video extension
func isMedia(path string) bool {
	return classify(path) != KindUnknown
}

// isVideo reports whether path has a supported video extension
func isVideo(path string) bool {
	return classify(path) == KindVideo
}
