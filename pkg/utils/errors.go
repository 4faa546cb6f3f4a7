package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

// Place lookup specific errors

// NewPlaceNotFoundError returns an error when the upstream lookup yields no match
func NewPlaceNotFoundError(name string) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Message: "Place not found",
		Detail:  fmt.Sprintf("could not find exact place match for %q", name),
	}
}

// NewMalformedPlaceError returns an error when the upstream place response
// cannot be split into id:code:name
func NewMalformedPlaceError(record string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: "Malformed place response",
		Detail:  fmt.Sprintf("upstream returned invalid place format: %q", record),
	}
}

// Upstream specific errors

func NewUpstreamUnavailableError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: "Upstream network request failed",
		Detail:  detail,
	}
}

func NewUpstreamStatusError(status int) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "Upstream returned an error status",
		Detail:  fmt.Sprintf("external search API returned status %d", status),
	}
}
