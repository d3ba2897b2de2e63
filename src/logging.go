package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger from config. The returned close
// function releases the log file, if one was opened.
func NewLogger(cfg *Config, out io.Writer) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	noop := func() error { return nil }

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, noop, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	log.SetOutput(out)
	if cfg.LogFile == "" {
		return log, noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return nil, noop, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f.Close, nil
}

// discardLogger is used when the caller does not care about log output
func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
