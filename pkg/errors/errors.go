package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Error codes for the failure taxonomy. Store failures surface to the caller;
// upstream model and parse failures are absorbed by the fallback chains and
// only ever appear in logs.
const (
	CodeStoreError    = "STORE_ERROR"
	CodeUpstreamModel = "UPSTREAM_MODEL_ERROR"
	CodeParseError    = "PARSE_ERROR"
	CodeTurnInFlight  = "TURN_IN_FLIGHT"
	CodeNotFound      = "NOT_FOUND"
	CodeBadRequest    = "BAD_REQUEST"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Stack      string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Stack:      string(debug.Stack()),
	}
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(code string, message string) *AppError {
	return NewError(http.StatusBadRequest, code, message)
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(code string, message string) *AppError {
	return NewError(http.StatusNotFound, code, message)
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(code string, message string) *AppError {
	return NewError(http.StatusConflict, code, message)
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// NewStoreError wraps a persistence failure. These are the one class of
// failure the end user is allowed to see.
func NewStoreError(op string, err error) *AppError {
	return NewError(http.StatusInternalServerError, CodeStoreError,
		fmt.Sprintf("persistence operation %q failed", op)).WithDetails(err.Error())
}

// NewUpstreamModelError wraps a language-model call failure
func NewUpstreamModelError(model string, err error) *AppError {
	return NewError(http.StatusBadGateway, CodeUpstreamModel,
		fmt.Sprintf("model %q call failed", model)).WithDetails(err.Error())
}

// NewParseError wraps a model-output decomposition failure
func NewParseError(message string) *AppError {
	return NewError(http.StatusUnprocessableEntity, CodeParseError, message)
}

// Is checks if the target error is of type AppError with the same code
func Is(err error, target *AppError) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == target.Code
}

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// FromError converts a standard error to an AppError.
// If the error is already an AppError, it is returned as-is.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalServerError(
		"INTERNAL_ERROR",
		fmt.Sprintf("An unexpected error occurred: %s", err.Error()),
	)
}

// GetStatusCode extracts the HTTP status code from an AppError, returns 500 if not an AppError
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
