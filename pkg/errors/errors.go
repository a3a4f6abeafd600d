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
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Catalog errors
	ErrCatalogLoad    ErrorCode = "CATALOG_LOAD"
	ErrCatalogParse   ErrorCode = "CATALOG_PARSE"
	ErrCatalogInvalid ErrorCode = "CATALOG_INVALID"

	// Platform errors
	ErrPlatformDetect      ErrorCode = "PLATFORM_DETECT"
	ErrPlatformUnsupported ErrorCode = "PLATFORM_UNSUPPORTED"

	// Package manager errors
	ErrManagerBootstrap ErrorCode = "MANAGER_BOOTSTRAP"
	ErrManagerMissing   ErrorCode = "MANAGER_MISSING"
	ErrInstallFailed    ErrorCode = "INSTALL_FAILED"

	// Backup errors
	ErrBackupCreate ErrorCode = "BACKUP_CREATE"
	ErrBackupMove   ErrorCode = "BACKUP_MOVE"
	ErrBackupSweep  ErrorCode = "BACKUP_SWEEP"

	// Editor config errors
	ErrConfigRender ErrorCode = "CONFIG_RENDER"
	ErrConfigWrite  ErrorCode = "CONFIG_WRITE"

	// Bundle errors
	ErrBundleClone    ErrorCode = "BUNDLE_CLONE"
	ErrBundleUpdate   ErrorCode = "BUNDLE_UPDATE"
	ErrBundleStage    ErrorCode = "BUNDLE_STAGE"
	ErrBundleArchive  ErrorCode = "BUNDLE_ARCHIVE"
	ErrBundleConflict ErrorCode = "BUNDLE_CONFLICT"

	// Transfer errors
	ErrTransferDial ErrorCode = "TRANSFER_DIAL"
	ErrTransferCopy ErrorCode = "TRANSFER_COPY"

	// Unpack errors
	ErrArchiveOpen     ErrorCode = "ARCHIVE_OPEN"
	ErrArchiveExtract  ErrorCode = "ARCHIVE_EXTRACT"
	ErrManifestMissing ErrorCode = "MANIFEST_MISSING"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// DevupError represents a structured error with code and details
type DevupError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DevupError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DevupError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DevupError) Is(target error) bool {
	var targetErr *DevupError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DevupError with the given code and message
func New(code ErrorCode, message string) *DevupError {
	return &DevupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DevupError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DevupError {
	return &DevupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DevupError
func Wrap(err error, code ErrorCode, message string) *DevupError {
	if err == nil {
		return nil
	}
	return &DevupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DevupError {
	if err == nil {
		return nil
	}
	return &DevupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DevupError) WithDetail(key string, value interface{}) *DevupError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var devupErr *DevupError
	if errors.As(err, &devupErr) {
		return devupErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DevupError
func GetErrorCode(err error) ErrorCode {
	var devupErr *DevupError
	if errors.As(err, &devupErr) {
		return devupErr.Code
	}
	return ErrUnknown
}
