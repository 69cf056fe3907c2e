package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveletters/loveletters-server/internal/ratelimit"
	"github.com/loveletters/loveletters-server/internal/search"
	"github.com/loveletters/loveletters-server/internal/service"
	"github.com/loveletters/loveletters-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Count   *int              `json:"count"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

type testServer struct {
	*Server
	api humatest.TestAPI
}

type testServerConfig struct {
	opts          Options
	searchEnabled bool
}

type testServerOption func(*testServerConfig)

func withRateLimit(requests int) testServerOption {
	return func(c *testServerConfig) {
		c.opts.RateLimiter = ratelimit.NewPerWindow(requests, 15*time.Minute, requests)
	}
}

func withoutSearch() testServerOption {
	return func(c *testServerConfig) {
		c.searchEnabled = false
	}
}

func withProductionErrors() testServerOption {
	return func(c *testServerConfig) {
		c.opts.ExposeErrors = false
	}
}

// setupTestServer builds a server over a fresh SQLite file and an in-memory
// search index.
func setupTestServer(t *testing.T, opts ...testServerOption) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "letters.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := testServerConfig{
		opts:          Options{Version: "test", ExposeErrors: true},
		searchEnabled: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.opts.RateLimiter != nil {
		t.Cleanup(cfg.opts.RateLimiter.Stop)
	}

	var searchService *service.SearchService
	if cfg.searchEnabled {
		index, err := search.NewSearchIndex(search.Options{Logger: logger})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
		searchService = service.NewSearchService(index, st, logger)
	}

	services := &Services{
		Letters: service.NewLetterService(st, searchService, logger),
		Search:  searchService,
	}

	s := NewServer(st, services, cfg.opts, logger)
	return &testServer{Server: s, api: humatest.Wrap(t, s.API())}
}

// createLetter posts a valid letter and returns it.
func (ts *testServer) createLetter(t *testing.T, body map[string]any) letterJSON {
	t.Helper()

	payload := map[string]any{
		"title":     "Para ti",
		"content":   "Te quiero",
		"recipient": "Ana",
		"author":    "Luis",
		"category":  "just_because",
		"mood":      "sweet",
	}
	for k, v := range body {
		payload[k] = v
	}

	resp := ts.api.Post("/api/letters", payload)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var env testEnvelope[letterJSON]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env.Data
}

// letterJSON decodes a letter as a client sees it.
type letterJSON struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Recipient  string    `json:"recipient"`
	Author     string    `json:"author"`
	Category   string    `json:"category"`
	Mood       string    `json:"mood"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/nowhere")

	assert.Equal(t, http.StatusNotFound, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Route GET /api/nowhere not found", env.Error)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Patch("/api/letters", map[string]any{})

	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Empty(t, env.Code)
}

func TestServer_MalformedJSON(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/letters", "Content-Type: application/json", strings.NewReader(`{"title": `))

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestServer_WrongFieldType(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/letters", map[string]any{
		"title":     42,
		"content":   "x",
		"recipient": "Ana",
		"category":  "birthday",
		"mood":      "sweet",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "title")
}

func TestServer_RateLimit(t *testing.T) {
	ts := setupTestServer(t, withRateLimit(2))

	for range 2 {
		resp := ts.api.Get("/api/letters")
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/letters")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Health checks are not throttled.
	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
}

func TestServer_RateLimitPerClient(t *testing.T) {
	ts := setupTestServer(t, withRateLimit(1))

	assert.Equal(t, http.StatusOK, ts.api.Get("/api/letters", "X-Forwarded-For: 10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.api.Get("/api/letters", "X-Forwarded-For: 10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/letters", "X-Forwarded-For: 10.0.0.2").Code)
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "/api/letters/{id}/favorite")
}

func TestServer_NoSchemaLinkInBodies(t *testing.T) {
	ts := setupTestServer(t)
	letter := ts.createLetter(t, nil)

	for _, path := range []string{"/health", "/api/meta", "/api/letters", "/api/letters/" + letter.ID} {
		t.Run(path, func(t *testing.T) {
			resp := ts.api.Get(path)
			require.Equal(t, http.StatusOK, resp.Code)
			assert.Empty(t, resp.Header().Get("Link"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.NotContains(t, body, "$schema")
			if data, ok := body["data"].(map[string]any); ok {
				assert.NotContains(t, data, "$schema")
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, remote: "5.6.7.8:99", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 9.9.9.9 "}, remote: "5.6.7.8:99", want: "9.9.9.9"},
		{name: "remote addr", remote: "5.6.7.8:99", want: "5.6.7.8"},
		{name: "remote without port", remote: "5.6.7.8", want: "5.6.7.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/api/letters", nil)
			require.NoError(t, err)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
