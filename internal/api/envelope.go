package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Bump
// only with a coordinated client release.
const envelopeVersion = 1

// successEnvelope wraps every successful response body.
type successEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// errorEnvelope wraps every error response body. Error always carries
// the human-readable message; Code and Details are present when the
// failure originated from a coded domain error.
type errorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps all API responses in the versioned envelope.
// Register it on the huma config before creating the adapter.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case nil:
		return &successEnvelope{V: envelopeVersion, Success: true}, nil
	case *APIError:
		return &errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   body.Message,
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	case huma.StatusError:
		return &errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   body.Error(),
		}, nil
	default:
		return &successEnvelope{V: envelopeVersion, Success: true, Data: v}, nil
	}
}
