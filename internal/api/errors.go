package api

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
	"github.com/loveletters/loveletters-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Detail  string `json:"detail,omitempty" doc:"Underlying error text, outside production only"`
	Details any    `json:"details,omitempty" doc:"Per-field validation errors"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
// exposeInternal adds the underlying error text to 500 responses.
func RegisterErrorHandler(exposeInternal bool) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			// Check if any of the errors are domain errors
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				apiErr := &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
				if domainErr.Code == domainerrors.CodeInternal {
					apiErr.Message = "internal server error"
					if exposeInternal {
						apiErr.Detail = domainErr.Error()
					}
				}
				return apiErr
			}

			// Store sentinels carry their own status
			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Code:    statusToCode(storeErr.HTTPCode()),
					Message: storeErr.Message,
				}
			}
		}

		// Request shape errors from Huma: malformed JSON, wrong types,
		// bad parameters. These are client errors and always 400.
		if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
			return &APIError{
				status:  http.StatusBadRequest,
				Code:    string(domainerrors.CodeValidation),
				Message: "validation failed",
				Details: fieldDetails(message, errs),
			}
		}

		if status >= http.StatusInternalServerError {
			apiErr := &APIError{
				status:  status,
				Code:    statusToCode(status),
				Message: "internal server error",
			}
			if exposeInternal {
				apiErr.Detail = joinErrors(message, errs)
			}
			return apiErr
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

// fieldDetails turns Huma error details into a field → message map.
// Locations such as "body.title" or "query.limit" are reduced to the field name.
// With no details at all, message is reported against the body.
func fieldDetails(message string, errs []error) map[string]string {
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			if err != nil {
				details["request"] = err.Error()
			}
			continue
		}

		field := detail.Location
		for _, prefix := range []string{"body.", "query.", "path.", "header."} {
			field = strings.TrimPrefix(field, prefix)
		}
		if field == "" {
			field = "body"
		}
		if _, seen := details[field]; !seen {
			details[field] = detail.Message
		}
	}
	if len(details) == 0 {
		details["body"] = message
	}
	return details
}

// bodyFieldErrors turns a field validation failure into Huma error details
// located in the request body, sorted by field.
func bodyFieldErrors(err error) []error {
	if err == nil {
		return nil
	}
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		return []error{err}
	}
	fields, ok := domainErr.Details.(map[string]string)
	if !ok {
		return []error{&huma.ErrorDetail{Location: "body", Message: domainErr.Message}}
	}

	names := slices.Sorted(maps.Keys(fields))
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, &huma.ErrorDetail{Location: "body." + name, Message: fields[name]})
	}
	return errs
}

func joinErrors(message string, errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			parts = append(parts, err.Error())
		}
	}
	if len(parts) == 0 {
		return message
	}
	return strings.Join(parts, "; ")
}

// statusToCode maps HTTP status codes to our domain error codes.
// Statuses with no domain meaning map to an empty code.
func statusToCode(status int) string {
	code := domainerrors.CodeForStatus(status)
	if code == domainerrors.CodeInternal && status < http.StatusInternalServerError {
		return ""
	}
	return string(code)
}
