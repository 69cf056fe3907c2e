package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverer(t *testing.T) {
	tests := []struct {
		name       string
		expose     bool
		wantDetail string
	}{
		{name: "production", expose: false, wantDetail: ""},
		{name: "development", expose: true, wantDetail: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			h := recoverer(logger, tt.expose)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/letters", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)

			var env testEnvelope[any]
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, "internal server error", env.Error)
			assert.Equal(t, tt.wantDetail, env.Message)
		})
	}
}

func TestRecoverer_RepanicsOnAbort(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := recoverer(logger, false)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := requestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/letters/x", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, "/api/letters/x", line["path"])
	assert.EqualValues(t, 404, line["status"])
}

func TestSecurityHeaders(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/api/letters", "/health", "/api/nowhere"} {
		t.Run(path, func(t *testing.T) {
			resp := ts.api.Get(path)

			assert.Equal(t, "nosniff", resp.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "SAMEORIGIN", resp.Header().Get("X-Frame-Options"))
			assert.Equal(t, "no-referrer", resp.Header().Get("Referrer-Policy"))
			assert.Equal(t, "same-origin", resp.Header().Get("Cross-Origin-Resource-Policy"))
		})
	}
}
