package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
	"github.com/loveletters/loveletters-server/internal/store"
)

func TestEnvelopeTransformer(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		input       any
		wantSuccess bool
		wantError   string
		wantCode    string
	}{
		{name: "plain data", status: "200", input: map[string]string{"key": "value"}, wantSuccess: true},
		{name: "no content", status: "204", input: nil, wantSuccess: true},
		{name: "plain error", status: "404", input: errors.New("gone"), wantError: "gone", wantCode: "NOT_FOUND"},
		{
			name:   "api error",
			status: "409",
			input: &APIError{
				status:  http.StatusConflict,
				Code:    "CONFLICT",
				Message: "already exists",
				Details: map[string]string{"id": "taken"},
			},
			wantError: "already exists",
			wantCode:  "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			env, ok := out.(APIEnvelope)
			require.True(t, ok, "expected APIEnvelope, got %T", out)
			assert.Equal(t, tt.wantSuccess, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestEnvelopeTransformer_PassesFinalBodies(t *testing.T) {
	body := ok("hello", "greeting")

	out, err := EnvelopeTransformer(nil, "200", body)
	require.NoError(t, err)
	assert.Equal(t, body, out)

	health := HealthResponse{Status: "healthy"}
	out, err = EnvelopeTransformer(nil, "200", health)
	require.NoError(t, err)
	assert.Equal(t, health, out)
}

func TestList_NilBecomesEmpty(t *testing.T) {
	env := list[string](nil)

	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, string(data))
}

func TestRegisterErrorHandler(t *testing.T) {
	RegisterErrorHandler(false)
	t.Cleanup(func() { RegisterErrorHandler(true) })

	t.Run("domain validation keeps details", func(t *testing.T) {
		err := domainerrors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"})
		se := huma.NewError(http.StatusInternalServerError, "unexpected", err)

		apiErr, ok := se.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, "VALIDATION", apiErr.Code)
		assert.Equal(t, map[string]string{"title": "is required"}, apiErr.Details)
	})

	t.Run("store not found", func(t *testing.T) {
		se := huma.NewError(http.StatusInternalServerError, "unexpected", store.ErrLetterNotFound)

		assert.Equal(t, http.StatusNotFound, se.GetStatus())
		assert.Equal(t, "letter not found", se.Error())
	})

	t.Run("huma field errors", func(t *testing.T) {
		se := huma.NewError(http.StatusUnprocessableEntity, "validation failed",
			&huma.ErrorDetail{Location: "body.title", Message: "expected string"},
			&huma.ErrorDetail{Location: "query.limit", Message: "expected integer"},
			&huma.ErrorDetail{Location: "", Message: "unexpected end of JSON input"},
		)

		apiErr, ok := se.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, map[string]string{
			"title": "expected string",
			"limit": "expected integer",
			"body":  "unexpected end of JSON input",
		}, apiErr.Details)
	})

	t.Run("internal hides detail", func(t *testing.T) {
		se := huma.NewError(http.StatusInternalServerError, "unexpected", errors.New("disk full"))

		apiErr, ok := se.(*APIError)
		require.True(t, ok)
		assert.Equal(t, "internal server error", apiErr.Message)
		assert.Empty(t, apiErr.Detail)
		assert.Equal(t, "INTERNAL", apiErr.Code)
	})

	t.Run("unavailable keeps message", func(t *testing.T) {
		se := huma.NewError(http.StatusInternalServerError, "unexpected", domainerrors.Unavailable("search is disabled"))

		assert.Equal(t, http.StatusServiceUnavailable, se.GetStatus())
		assert.Equal(t, "search is disabled", se.Error())
	})

	t.Run("other client errors carry no code", func(t *testing.T) {
		se := huma.NewError(http.StatusMethodNotAllowed, "method not allowed")

		apiErr, ok := se.(*APIError)
		require.True(t, ok)
		assert.Empty(t, apiErr.Code)
	})
}

func TestRegisterErrorHandler_ExposesInternalDetail(t *testing.T) {
	RegisterErrorHandler(true)

	se := huma.NewError(http.StatusInternalServerError, "unexpected", errors.New("disk full"))

	apiErr, ok := se.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "internal server error", apiErr.Message)
	assert.Equal(t, "disk full", apiErr.Detail)
}
