package validation_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
	"github.com/loveletters/loveletters-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type letterRequest struct {
	Title     string   `json:"title" validate:"notblank,max=100"`
	Content   string   `json:"content" validate:"notblank"`
	Recipient string   `json:"recipient" validate:"notblank,max=50"`
	Author    string   `json:"author" validate:"notblank,max=50"`
	Category  string   `json:"category" validate:"required,category"`
	Mood      string   `json:"mood" validate:"required,mood"`
	Tags      []string `json:"tags,omitempty"`
}

type patchRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitnil,notblank,max=100"`
	Category *string `json:"category,omitempty" validate:"omitnil,category"`
}

func validRequest() letterRequest {
	return letterRequest{
		Title:     "Buenos días",
		Content:   "Te quiero",
		Recipient: "Princesita",
		Author:    "Pollito",
		Category:  "good_morning",
		Mood:      "sweet",
		Tags:      []string{"amor"},
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok, "details should be a field map, got %T", domainErr.Details)
	return details
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(validRequest()))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(r *letterRequest)
		wantField string
		wantMsg   string
	}{
		{
			name:      "empty title",
			mutate:    func(r *letterRequest) { r.Title = "" },
			wantField: "title",
			wantMsg:   "is required",
		},
		{
			name:      "blank title",
			mutate:    func(r *letterRequest) { r.Title = "   " },
			wantField: "title",
			wantMsg:   "is required",
		},
		{
			name:      "title too long",
			mutate:    func(r *letterRequest) { r.Title = strings.Repeat("a", 101) },
			wantField: "title",
			wantMsg:   "must not exceed 100 characters",
		},
		{
			name:      "recipient too long",
			mutate:    func(r *letterRequest) { r.Recipient = strings.Repeat("b", 51) },
			wantField: "recipient",
			wantMsg:   "must not exceed 50 characters",
		},
		{
			name:      "unknown category",
			mutate:    func(r *letterRequest) { r.Category = "valentines" },
			wantField: "category",
			wantMsg:   "must be one of: anniversary",
		},
		{
			name:      "unknown mood",
			mutate:    func(r *letterRequest) { r.Mood = "angry" },
			wantField: "mood",
			wantMsg:   "must be one of: romantic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			details := fieldErrors(t, v.Validate(req))
			assert.Len(t, details, 1)
			assert.Contains(t, details[tt.wantField], tt.wantMsg)
		})
	}
}

func TestValidator_LengthCountsCharacters(t *testing.T) {
	v := validation.New()

	req := validRequest()
	// 100 two-byte characters are within the limit.
	req.Title = strings.Repeat("ñ", 100)

	assert.NoError(t, v.Validate(req))
}

func TestValidator_CollectsEveryField(t *testing.T) {
	v := validation.New()

	details := fieldErrors(t, v.Validate(letterRequest{}))

	for _, field := range []string{"title", "content", "recipient", "author", "category", "mood"} {
		assert.Contains(t, details, field)
	}
	// JSON tag names, not struct field names.
	assert.NotContains(t, details, "Title")
}

func TestValidator_PartialFields(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(patchRequest{}))

	blank := " "
	details := fieldErrors(t, v.Validate(patchRequest{Title: &blank}))
	assert.Equal(t, "is required", details["title"])

	bad := "valentines"
	details = fieldErrors(t, v.Validate(patchRequest{Category: &bad}))
	assert.Contains(t, details, "category")

	good := "birthday"
	assert.NoError(t, v.Validate(patchRequest{Category: &good}))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		want     time.Time
		dateOnly bool
		wantErr  bool
	}{
		{"2025-02-14", time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), true, false},
		{"2025-02-14T08:30:00Z", time.Date(2025, 2, 14, 8, 30, 0, 0, time.UTC), false, false},
		{"2025-02-14T08:30:00.5-03:00", time.Date(2025, 2, 14, 11, 30, 0, 500000000, time.UTC), false, false},
		{"14/02/2025", time.Time{}, false, true},
		{"yesterday", time.Time{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, dateOnly, err := validation.ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			assert.Equal(t, tt.dateOnly, dateOnly)
		})
	}
}

func TestValidator_DateTag(t *testing.T) {
	v := validation.New()

	type query struct {
		From string `json:"from" validate:"omitempty,date"`
	}

	assert.NoError(t, v.Validate(query{}))
	assert.NoError(t, v.Validate(query{From: "2025-02-14"}))

	details := fieldErrors(t, v.Validate(query{From: "ayer"}))
	assert.Contains(t, details["from"], "YYYY-MM-DD")
}
