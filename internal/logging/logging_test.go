package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_WritesJSONAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := newLogger(Config{Level: "warn"}, &buf)
	defer closeFn()

	logger.Info("dropped")
	logger.Warn("kept", "category", "Popular Movies")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "Popular Movies", entry["category"])
}

func TestNew_MirrorsToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "catalog.log")

	var buf bytes.Buffer
	logger, closeFn := newLogger(Config{Level: "info", File: path, MaxSizeMB: 1}, &buf)
	logger.Info("refresh run completed", "categories", 22)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "refresh run completed")
	assert.Equal(t, buf.String(), string(data))
}
