package main

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// destPlanner hands out destination paths for one batch. Every output is
// named after the source basename; when two different sources in the same
// batch share a basename the later one gets a counter suffix. A later
// source with identical content shares the earlier destination.
type destPlanner struct {
	destDir string
	claimed map[string]string // destination -> source
	hashes  map[string]string // source -> md5
}

func newDestPlanner(destDir string) *destPlanner {
	return &destPlanner{
		destDir: destDir,
		claimed: make(map[string]string),
		hashes:  make(map[string]string),
	}
}

// plan returns the destination for src and claims it
func (p *destPlanner) plan(src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]

	candidate := filepath.Join(p.destDir, base)
	for i := 1; ; i++ {
		owner, taken := p.claimed[candidate]
		if !taken {
			p.claimed[candidate] = src
			return candidate
		}
		if owner == src || p.sameContent(owner, src) {
			return candidate
		}
		candidate = filepath.Join(p.destDir, fmt.Sprintf("%s_%d%s", name, i, ext))
	}
}

// sameContent compares two sources by hash. Unreadable files never match.
func (p *destPlanner) sameContent(a, b string) bool {
	ha, err := p.hash(a)
	if err != nil {
		return false
	}
	hb, err := p.hash(b)
	if err != nil {
		return false
	}
	return ha == hb
}

func (p *destPlanner) hash(path string) (string, error) {
	if h, ok := p.hashes[path]; ok {
		return h, nil
	}
	h, err := calculateFileHash(path)
	if err != nil {
		return "", err
	}
	p.hashes[path] = h
	return h, nil
}

// calculateFileHash calculates MD5 hash of a file
func calculateFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
