package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Snapshot errors
	ErrSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	ErrSnapshotCorrupt  ErrorCode = "SNAPSHOT_CORRUPT"
	ErrSnapshotWrite    ErrorCode = "SNAPSHOT_WRITE"
	ErrSnapshotExists   ErrorCode = "SNAPSHOT_EXISTS"

	// Bootstrap errors
	ErrBootstrapFailure ErrorCode = "BOOTSTRAP_FAILURE"
	ErrEmptyRemote      ErrorCode = "EMPTY_REMOTE"

	// Sync session errors
	ErrStageFailure  ErrorCode = "STAGE_FAILURE"
	ErrCommitFailure ErrorCode = "COMMIT_FAILURE"
	ErrSyncConflict  ErrorCode = "SYNC_CONFLICT"
	ErrPushRejected  ErrorCode = "PUSH_REJECTED"
	ErrSessionLocked ErrorCode = "SESSION_LOCKED"

	// Process errors
	ErrGitNotFound ErrorCode = "GIT_NOT_FOUND"
	ErrGitExec     ErrorCode = "GIT_EXEC"
)

// TidesyncError represents a structured error with code and details
type TidesyncError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *TidesyncError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TidesyncError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *TidesyncError) Is(target error) bool {
	var targetErr *TidesyncError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new TidesyncError with the given code and message
func New(code ErrorCode, message string) *TidesyncError {
	return &TidesyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new TidesyncError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TidesyncError {
	return &TidesyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a TidesyncError
func Wrap(err error, code ErrorCode, message string) *TidesyncError {
	if err == nil {
		return nil
	}
	return &TidesyncError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TidesyncError {
	if err == nil {
		return nil
	}
	return &TidesyncError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *TidesyncError) WithDetail(key string, value interface{}) *TidesyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode extracts the error code from an error, returning ErrUnknown
// for errors that are not TidesyncErrors
func GetCode(err error) ErrorCode {
	var te *TidesyncError
	if errors.As(err, &te) {
		return te.Code
	}
	return ErrUnknown
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	var te *TidesyncError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}
