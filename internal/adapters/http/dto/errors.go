// Package dto provides Data Transfer Objects for HTTP request/response
// handling.
package dto

import "net/http"

// ErrorResponse is the standard error envelope for all error responses.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g. "NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details carries field-level messages for validation errors.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeConflict     = "CONFLICT"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal     = "INTERNAL_ERROR"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeBadRequest   = "BAD_REQUEST"
)

// NewErrorResponse creates an error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
