package errors

import (
	"fmt"
	"net/http"

	"usersvc/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// Is matches any BaseError carrying the same business code, so copies made by
// WithDetails still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Account errors
	ErrDuplicateEmail = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_EMAIL",
		"email is already registered",
		"",
	)

	ErrAccountNotFound = NewBaseError(
		http.StatusNotFound,
		"ACCOUNT_NOT_FOUND",
		"account not found",
		"",
	)

	ErrAccountDeactivated = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_DEACTIVATED",
		"account is deactivated",
		"",
	)

	ErrInvalidEmail = NewBaseError(
		http.StatusBadRequest,
		"INVALID_EMAIL",
		"email address is not valid",
		"",
	)

	// Credential errors. AuthFailed is deliberately the only outcome of a
	// failed login, whatever the cause.
	ErrAuthFailed = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid credentials",
		"",
	)

	ErrWeakSecret = NewBaseError(
		http.StatusBadRequest,
		"WEAK_SECRET",
		"password does not meet the strength policy",
		"",
	)

	ErrInvalidCredentialFormat = NewBaseError(
		http.StatusInternalServerError,
		"INVALID_CREDENTIAL_FORMAT",
		"stored credential is malformed",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"password processing failed",
		"",
	)

	// Schema errors
	ErrSchemaNotReady = NewBaseError(
		http.StatusServiceUnavailable,
		"SCHEMA_NOT_READY",
		"service is not ready",
		"",
	)

	ErrMigrationConfig = NewBaseError(
		http.StatusInternalServerError,
		"MIGRATION_CONFIG_INVALID",
		"migration set is invalid",
		"",
	)

	// Request errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"authentication required",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"access denied",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)

// MigrationFailedError reports the schema step that failed during a migration run.
// Steps below AtVersion stay committed.
type MigrationFailedError struct {
	AtVersion int64
	err       error
}

// NewMigrationFailedError creates a migration failure for the given step version.
func NewMigrationFailedError(atVersion int64, err error) *MigrationFailedError {
	return &MigrationFailedError{AtVersion: atVersion, err: err}
}

// Error implements the error interface
func (e *MigrationFailedError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("migration failed at version %d", e.AtVersion)
	}

	return fmt.Sprintf("migration failed at version %d: %v", e.AtVersion, e.err)
}

// Unwrap exposes the underlying step error.
func (e *MigrationFailedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *MigrationFailedError) HTTPCode() int {
	return http.StatusServiceUnavailable
}

// ErrorCode returns the business error code
func (e *MigrationFailedError) ErrorCode() string {
	return "MIGRATION_FAILED"
}

// Message returns the user-friendly error message
func (e *MigrationFailedError) Message() string {
	return "service is not ready"
}

// Details returns detailed error information
func (e *MigrationFailedError) Details() string {
	return fmt.Sprintf("at_version=%d", e.AtVersion)
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error, so context cancellation stays detectable.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
