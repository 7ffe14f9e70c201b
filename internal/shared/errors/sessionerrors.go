package errors

import (
	"net/http"
	"strings"
)

const (
	ErrorTypePrincipalNotFound   ErrorType = "principal_not_found"
	ErrorTypeTransientStore      ErrorType = "transient_store_error"
	ErrorTypeSchema              ErrorType = "schema_error"
	ErrorTypeMalformedLocalState ErrorType = "malformed_local_state"
	ErrorTypeSessionInvalid      ErrorType = "session_invalid"
)

// NewPrincipalNotFoundError reports that neither the primary nor the legacy
// identifier resolved to an employee.
func NewPrincipalNotFoundError(identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypePrincipalNotFound,
		Message: "employee not found",
		Code:    http.StatusNotFound,
		Details: identifier,
	}
}

// NewTransientStoreError wraps a network, timeout or unclassified store failure.
// Callers retry on the next cycle.
func NewTransientStoreError(op string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransientStore,
		Message: "session store unavailable",
		Code:    http.StatusServiceUnavailable,
		Details: op,
		Err:     cause,
	}
}

// NewSchemaError reports a missing column or table. It is not retryable.
func NewSchemaError(op string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeSchema,
		Message: "session store schema mismatch",
		Code:    http.StatusInternalServerError,
		Details: op,
		Err:     cause,
	}
}

// NewMalformedLocalStateError reports unreadable station-local data. The
// identity cache logs it and treats the entry as absent.
func NewMalformedLocalStateError(details string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedLocalState,
		Message: "local state is malformed",
		Code:    http.StatusInternalServerError,
		Details: details,
		Err:     cause,
	}
}

func NewSessionInvalidError(details ...string) *AppError {
	return newAppError(ErrorTypeSessionInvalid, http.StatusUnauthorized, "session is no longer valid", details)
}

func IsPrincipalNotFoundError(err error) bool {
	return isType(err, ErrorTypePrincipalNotFound)
}

func IsTransientStoreError(err error) bool {
	return isType(err, ErrorTypeTransientStore)
}

func IsSchemaError(err error) bool {
	return isType(err, ErrorTypeSchema)
}

func IsSessionInvalidError(err error) bool {
	return isType(err, ErrorTypeSessionInvalid)
}

var schemaMarkers = []string{
	"no such column",       // sqlite
	"has no column named",  // sqlite insert
	"no such table",        // sqlite
	"Unknown column",       // mysql
	"doesn't exist",        // mysql table
	"SQLSTATE 42703",       // postgres undefined_column
	"SQLSTATE 42P01",       // postgres undefined_table
}

// IsSchemaMismatch reports whether a raw driver error means a column or
// table is missing.
func IsSchemaMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "does not exist") &&
		(strings.Contains(msg, "column") || strings.Contains(msg, "relation")) {
		return true
	}
	for _, marker := range schemaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func IsMalformedLocalStateError(err error) bool {
	return isType(err, ErrorTypeMalformedLocalState)
}
