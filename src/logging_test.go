package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, closeLog, err := NewLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	require.NoError(t, err)
	defer closeLog()

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	log.Info("hidden")
	log.WithField("file", "IMG_1.jpg").Warn("repair failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "repair failed", entry["msg"])
	assert.Equal(t, "IMG_1.jpg", entry["file"])
	assert.Equal(t, "warning", entry["level"])
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "restorer.log")
	var buf bytes.Buffer
	log, closeLog, err := NewLogger(&Config{LogLevel: "info", LogFormat: "text", LogFile: path}, &buf)
	require.NoError(t, err)

	log.Info("scan complete")
	require.NoError(t, closeLog())

	assert.Empty(t, buf.String())
	assert.Contains(t, readFile(t, path), "scan complete")
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, _, err := NewLogger(&Config{LogLevel: "chatty"}, &bytes.Buffer{})
	assert.Error(t, err)
}
