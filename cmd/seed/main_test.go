package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveletters/loveletters-server/internal/store"
	"github.com/loveletters/loveletters-server/internal/store/sqlite"
)

const legacyArray = `[
  {
    "id": "legacy-1",
    "title": "Hola",
    "content": "Te quiero",
    "recipient": "Ana",
    "author": "Luis",
    "category": "just_because",
    "mood": "sweet",
    "tags": ["amor"],
    "isFavorite": true,
    "createdAt": "2024-02-14T10:00:00Z",
    "updatedAt": "2024-02-15T10:00:00Z"
  }
]`

func TestDecodeLetters(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr bool
	}{
		{name: "legacy array", input: legacyArray, wantIDs: []string{"legacy-1"}},
		{name: "export document", input: `{"exportedAt":"2025-01-01T00:00:00Z","count":1,"letters":[{"id":"a"}]}`, wantIDs: []string{"a"}},
		{name: "enveloped export", input: `{"success":true,"data":{"count":2,"letters":[{"id":"a"},{"id":"b"}]}}`, wantIDs: []string{"a", "b"}},
		{name: "empty array", input: ` [] `, wantIDs: []string{}},
		{name: "empty", input: "  ", wantErr: true},
		{name: "no letters", input: `{"success":true}`, wantErr: true},
		{name: "not json", input: `letters`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			letters, err := decodeLetters([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			ids := make([]string, 0, len(letters))
			for _, l := range letters {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSampleLetters_Valid(t *testing.T) {
	now := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)

	seen := map[string]bool{}
	for _, l := range sampleLetters(now) {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
		assert.True(t, l.Category.Valid(), l.ID)
		assert.True(t, l.Mood.Valid(), l.ID)
		assert.True(t, l.CreatedAt.Before(now))
		assert.Equal(t, l.CreatedAt, l.UpdatedAt)
	}
}

func TestRun_ImportsFileOnce(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "letters.json")
	require.NoError(t, os.WriteFile(file, []byte(legacyArray), 0o600))
	dbPath := filepath.Join(dir, "letters.db")

	require.NoError(t, run(t.Context(), []string{"-file", file, "-db-path", dbPath}))
	require.NoError(t, run(t.Context(), []string{"-file", file, "-samples", "-db-path", dbPath}))

	st, err := sqlite.Open(dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	letter, err := st.GetLetter(t.Context(), "legacy-1")
	require.NoError(t, err)
	assert.True(t, letter.IsFavorite)
	assert.Equal(t, time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC), letter.CreatedAt)
	assert.Equal(t, time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC), letter.UpdatedAt)

	all, err := st.ListLetters(t.Context(), store.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1+len(sampleLetters(time.Now())))

	_, err = st.GetLetter(t.Context(), "ltr-sample-anniversary")
	assert.NoError(t, err)
}

func TestRun_RequiresInput(t *testing.T) {
	err := run(t.Context(), nil)
	assert.Error(t, err)
}
