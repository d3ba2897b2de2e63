package main

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSidecarNotFound = errors.New("sidecar not found")
	ErrMetadataParse   = errors.New("metadata parse error")
	ErrIO              = errors.New("i/o error")
	ErrExternalProcess = errors.New("external process error")
	ErrVerification    = errors.New("verification failed")
	ErrInvalidDest     = errors.New("invalid destination folder")
)

// ParseError describes a sidecar that could not be decoded
type ParseError struct {
	Field  string // empty when the document itself is malformed
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "parse sidecar: " + e.Reason
	}
	return fmt.Sprintf("parse sidecar: %s: %s", e.Field, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMetadataParse
}

// ExternalProcessError describes a failed exiftool or ffmpeg run
type ExternalProcessError struct {
	Tool     string
	ExitCode int // -1 when the process could not be started
	Stderr   string
	Err      error
}

func (e *ExternalProcessError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Tool)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if stderr := lastLine(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ExternalProcessError) Is(target error) bool {
	return target == ErrExternalProcess
}

func (e *ExternalProcessError) Unwrap() error {
	return e.Err
}

// lastLine returns the last non-empty line of tool output
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
