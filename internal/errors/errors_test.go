package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveletters/loveletters-server/internal/errors"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeValidation, http.StatusBadRequest},
		{errors.CodeRateLimited, http.StatusTooManyRequests},
		{errors.CodeUnavailable, http.StatusServiceUnavailable},
		{errors.CodeInternal, http.StatusInternalServerError},
		{errors.Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, errors.CodeValidation, errors.CodeForStatus(http.StatusBadRequest))
	assert.Equal(t, errors.CodeValidation, errors.CodeForStatus(http.StatusUnprocessableEntity))
	assert.Equal(t, errors.CodeNotFound, errors.CodeForStatus(http.StatusNotFound))
	assert.Equal(t, errors.CodeRateLimited, errors.CodeForStatus(http.StatusTooManyRequests))
	assert.Equal(t, errors.CodeInternal, errors.CodeForStatus(http.StatusTeapot))
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("create letter: %w", errors.ValidationWithDetails("validation failed", nil))

	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.False(t, errors.Is(err, errors.ErrUnavailable))
	assert.True(t, errors.Is(errors.Unavailable("search is disabled"), errors.ErrUnavailable))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(cause, errors.CodeInternal, "create letter")

	assert.Equal(t, "create letter: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestValidationWithDetails(t *testing.T) {
	details := map[string]string{"title": "is required"}
	err := errors.ValidationWithDetails("validation failed", details)

	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeValidation, domainErr.Code)
	assert.Equal(t, details, domainErr.Details)
	assert.Equal(t, "validation failed", domainErr.Error())
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
}
