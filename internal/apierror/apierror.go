// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	// Recurso identifies the offending resource (roll id, stage name,
	// product id) so operators can pick another without guessing.
	Recurso string `json:"recurso,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewConRecurso builds an envelope that names the resource that caused the
// rejection.
func NewConRecurso(msg, recurso string) *APIError {
	return &APIError{Detail: msg, Recurso: recurso}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
