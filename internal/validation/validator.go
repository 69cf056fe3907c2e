// Package validation provides request validation utilities using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	nonstandard "github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/loveletters/loveletters-server/internal/domain"
	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove options like omitempty, -
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = name[:i]
		}
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("notblank", nonstandard.NotBlank)
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
		return domain.Mood(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, _, err := ParseDate(fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error carrying every
// field violation, keyed by JSON field name.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Collect all field errors
	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Field()
		if _, seen := fieldErrors[field]; seen {
			continue
		}
		fieldErrors[field] = v.friendlyMessage(e)
	}

	// Return domain validation error with details
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "category":
		return "must be one of: " + joinValues(domain.AllCategories())
	case "mood":
		return "must be one of: " + joinValues(domain.AllMoods())
	case "boolean":
		return "must be a boolean"
	case "date":
		return "must be an RFC 3339 timestamp or a YYYY-MM-DD date"
	default:
		return "is invalid"
	}
}

// ParseDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date, which is
// read as midnight UTC. dateOnly reports which form was given.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("parse date %q: %w", s, err)
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
