package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Error codes
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeConflict   = "CONFLICT"
)

// pgUniqueViolation is the SQLSTATE PostgreSQL reports for duplicate keys.
const pgUniqueViolation = "23505"

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR. Malformed input is
// reported as 422 Unprocessable Entity.
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusUnprocessableEntity,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflictError creates a new CONFLICT error
func NewConflictError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// IsUniqueViolation reports whether err comes from a duplicate key in either
// supported database.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// FromStore classifies an error returned by the persistence layer. AppErrors
// pass through untouched.
func FromStore(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if IsUniqueViolation(err) {
		return NewConflictError("duplicate value found", err)
	}
	return NewInternalError(err)
}
