package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/loveletters/loveletters-server/internal/errors"
)

// APIEnvelope is the uniform response shape:
// {success, data?, error?, message?, count?, details?, code?}.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the typed success body returned by operations, so the OpenAPI
// schema describes the enveloped shape the client actually receives.
type Envelope[T any] struct {
	Success bool   `json:"success" doc:"True for successful responses"`
	Data    T      `json:"data" doc:"Response payload"`
	Count   *int   `json:"count,omitempty" doc:"Number of items in data, for list responses"`
	Message string `json:"message,omitempty" doc:"Human-readable outcome"`
}

func (Envelope[T]) finalBody() {}

// finalBody marks bodies that the transformer must pass through untouched.
type finalBody interface {
	finalBody()
}

// ok wraps data in a success envelope.
func ok[T any](data T, message string) Envelope[T] {
	return Envelope[T]{Success: true, Data: data, Message: message}
}

// list wraps a slice in a success envelope carrying its count.
func list[T any](items []T) Envelope[[]T] {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Envelope[[]T]{Success: true, Data: items, Count: &n}
}

// EnvelopeTransformer wraps every Huma response body in APIEnvelope.
// Bodies that already carry their final shape pass through unchanged.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if _, done := v.(finalBody); done {
		return v, nil
	}

	code, _ := strconv.Atoi(status)
	failed := code >= 400

	switch body := v.(type) {
	case *APIError:
		return APIEnvelope{
			Error:   body.Message,
			Code:    body.Code,
			Message: body.Detail,
			Details: body.Details,
		}, nil
	case error:
		return APIEnvelope{
			Error: body.Error(),
			Code:  string(domainerrors.CodeForStatus(code)),
		}, nil
	case nil:
		return APIEnvelope{Success: !failed}, nil
	default:
		return APIEnvelope{Success: !failed, Data: body}, nil
	}
}
