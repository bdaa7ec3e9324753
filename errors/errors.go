package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the error type rendered by the HTTP layer
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   "Internal server error",
		Timestamp: time.Now(),
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_ARGUMENT,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_PAYLOAD,
		Message:   "Invalid payload",
		Timestamp: time.Now(),
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_NOT_FOUND,
		Message:   fmt.Sprintf("%s not found", resource),
		Timestamp: time.Now(),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_UNAUTHENTICATED,
		Message:   "Authentication required",
		Timestamp: time.Now(),
	}
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_INVALID_TOKEN,
		Message:   "Invalid authentication token",
		Timestamp: time.Now(),
	}
}

func ErrTokenExpired() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_TOKEN_EXPIRED,
		Message:   "Authentication token has expired",
		Timestamp: time.Now(),
	}
}

// Workspace Errors
func ErrTranscriptMissing(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusUnprocessableEntity,
		Code:      ErrorCode_WORKSPACE_TRANSCRIPT_MISSING,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrScriptUnparseable(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusUnprocessableEntity,
		Code:      ErrorCode_WORKSPACE_SCRIPT_UNPARSEABLE,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrNothingToSynthesize(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusUnprocessableEntity,
		Code:      ErrorCode_WORKSPACE_NOTHING_TO_SYNTH,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrNothingToExport(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusUnprocessableEntity,
		Code:      ErrorCode_WORKSPACE_NOTHING_TO_EXPORT,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrOperationInFlight(operation, message string) AppError {
	return AppError{
		HTTPCode:  http.StatusConflict,
		Code:      ErrorCode_WORKSPACE_OPERATION_IN_FLIGHT,
		Message:   message,
		Timestamp: time.Now(),
	}.WithDetail("operation", operation)
}

func ErrOperationSuperseded(operation, message string) AppError {
	return AppError{
		HTTPCode:  http.StatusConflict,
		Code:      ErrorCode_WORKSPACE_SUPERSEDED,
		Message:   message,
		Timestamp: time.Now(),
	}.WithDetail("operation", operation)
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:   fmt.Sprintf("Storage operation failed: %s", operation),
		Timestamp: time.Now(),
	}
}

// ErrExternalAPIFailed wraps a collaborator failure. message is the text
// shown to the user; status is the remote HTTP status when there was one.
func ErrExternalAPIFailed(service, message string, status int, err error) AppError {
	httpCode := http.StatusBadGateway
	if status >= 400 && status < 500 {
		httpCode = status
	}
	e := AppError{
		Raw:       err,
		HTTPCode:  httpCode,
		Code:      ErrorCode_INTEGRATION_EXTERNAL_API_FAILED,
		Message:   message,
		Timestamp: time.Now(),
	}.WithDetail("service", service)
	if status > 0 {
		e = e.WithDetail("upstream_status", fmt.Sprintf("%d", status))
	}
	return e
}
