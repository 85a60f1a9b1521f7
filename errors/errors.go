package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies a class of failure across the service.
type ErrorCode string

const (
	ErrorCode_INTERNAL              ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT      ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND             ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS        ErrorCode = "ALREADY_EXISTS"
	ErrorCode_SOURCE_UNAVAILABLE    ErrorCode = "SOURCE_UNAVAILABLE"
	ErrorCode_MALFORMED_TRANSCRIPT  ErrorCode = "MALFORMED_TRANSCRIPT"
	ErrorCode_CURATION_STAGE_FAILED ErrorCode = "CURATION_STAGE_FAILED"
	ErrorCode_TRACKING_LOST         ErrorCode = "TRACKING_LOST"
	ErrorCode_JOB_ALREADY_RUNNING   ErrorCode = "JOB_ALREADY_RUNNING"
	ErrorCode_STAGE_TIMEOUT         ErrorCode = "STAGE_TIMEOUT"
	ErrorCode_UPLOAD_FAILED         ErrorCode = "UPLOAD_FAILED"
	ErrorCode_RENDER_FAILED         ErrorCode = "RENDER_FAILED"
	ErrorCode_DB_QUERY_FAILED       ErrorCode = "DB_QUERY_FAILED"
	ErrorCode_CACHE_FAILED          ErrorCode = "CACHE_FAILED"
	ErrorCode_STORAGE_FAILED        ErrorCode = "STORAGE_FAILED"
	ErrorCode_INVALID_PAYLOAD       ErrorCode = "INVALID_PAYLOAD"
)

func (c ErrorCode) String() string { return string(c) }

// AppError is the error type carried across layer boundaries. Handlers
// translate it into an HTTP response, the orchestrator records it as a
// job failure reason.
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

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e AppError) Unwrap() error { return e.Raw }

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
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrAlreadyExists(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_ALREADY_EXISTS,
		Message:  fmt.Sprintf("%s already exists", resource),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// Transcript Source Errors

// ErrSourceUnavailable marks a transcription backend that cannot be
// reached or was configured with bad credentials.
func ErrSourceUnavailable(source string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SOURCE_UNAVAILABLE,
		Message:  fmt.Sprintf("Transcript source unavailable: %s", source),
	}.WithDetail("source", source)
}

func ErrMalformedTranscript(episodeID, reason string) AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_MALFORMED_TRANSCRIPT,
		Message:  "Transcript failed validation",
	}.WithDetail("episode_id", episodeID).
		WithDetail("reason", reason)
}

// Curation Errors

func ErrCurationStageFailed(stage string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_CURATION_STAGE_FAILED,
		Message:  fmt.Sprintf("Curation stage failed: %s", stage),
	}.WithDetail("stage", stage)
}

// Rendering Errors

// ErrTrackingLost is recoverable: the reframer falls back to a static
// center crop when it sees this code.
func ErrTrackingLost(clipID string) AppError {
	return AppError{
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_TRACKING_LOST,
		Message:  "Subject tracking lost",
	}.WithDetail("clip_id", clipID)
}

func ErrRenderFailed(clipID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_RENDER_FAILED,
		Message:  "Clip rendering failed",
	}.WithDetail("clip_id", clipID)
}

// Job Errors

func ErrJobAlreadyRunning(episodeID string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_JOB_ALREADY_RUNNING,
		Message:  "A job is already running for this episode",
	}.WithDetail("episode_id", episodeID)
}

func ErrStageTimeout(stage string) AppError {
	return AppError{
		HTTPCode: http.StatusGatewayTimeout,
		Code:     ErrorCode_STAGE_TIMEOUT,
		Message:  fmt.Sprintf("Stage timed out: %s", stage),
	}.WithDetail("stage", stage)
}

func ErrUploadFailed(episodeID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_UPLOAD_FAILED,
		Message:  "Transcript upload failed",
	}.WithDetail("episode_id", episodeID)
}

// Infrastructure Errors

func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("query", query)
}

func ErrCacheFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_CACHE_FAILED,
		Message:  fmt.Sprintf("Cache operation failed: %s", operation),
	}
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}
