package main

import (
	"os"
	"path/filepath"
	"strings"
)

// sidecarCandidates lists the sidecar names tried for a media file, in order:
// "IMG_1.jpg.json" first, then "IMG_1.json".
func sidecarCandidates(mediaPath string) []string {
	dir := filepath.Dir(mediaPath)
	base := filepath.Base(mediaPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return []string{
		filepath.Join(dir, base+".json"),
		filepath.Join(dir, stem+".json"),
	}
}

// findSidecar returns the first existing sidecar for mediaPath.
// Names are matched exactly; a sidecar whose case differs is not found.
func findSidecar(mediaPath string) (string, bool) {
	for _, candidate := range sidecarCandidates(mediaPath) {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}
