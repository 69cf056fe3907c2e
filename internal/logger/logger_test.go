package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	logger.Info("letter created", "id", "ltr-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "letter created", line["msg"])
	assert.Equal(t, "ltr-1", line["id"])
}

func TestNew_FormatFollowsEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{environment: "production", wantJSON: true},
		{environment: "staging", wantJSON: false},
		{environment: "development", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Environment: tt.environment, Writer: &buf}).Info("hello")

			assert.Equal(t, tt.wantJSON, json.Valid(bytes.TrimSpace(buf.Bytes())), buf.String())
		})
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: "json", Writer: &buf})

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_FileSink(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: "pretty",
		Writer: &console,
		File:   FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	})
	logger.With("component", "store").Info("opened")
	require.NoError(t, logger.Close())

	assert.Contains(t, console.String(), "opened")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "opened", line["msg"])
	assert.Equal(t, "store", line["component"])
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	logger := New(Config{Writer: &bytes.Buffer{}})
	assert.NoError(t, logger.Close())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestPrettyHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.WithGroup("http").With("method", "GET").Debug("request", "path", "/api/letters", "title", "Te quiero")

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "request")
	assert.Contains(t, out, "http.method=GET")
	assert.Contains(t, out, "http.path=/api/letters")
	assert.Contains(t, out, `http.title="Te quiero"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)

	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, h.Enabled(t.Context(), slog.LevelInfo))
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}

	for _, tt := range tests {
		got, _ := formatLevel(tt.level)
		assert.Equal(t, tt.want, got)
	}
}
