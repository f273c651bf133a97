package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeArrayExpected      = "ARRAY_EXPECTED"
	ErrCodeDuplicateID        = "DUPLICATE_ID"
	ErrCodePasswordTooLong    = "PASSWORD_TOO_LONG"
	ErrCodeFileRequired       = "FILE_REQUIRED"
	ErrCodeFileTooLarge       = "FILE_TOO_LARGE"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ErrorKind classifies an error for the HTTP layer.
type ErrorKind int

const (
	KindBackend ErrorKind = iota
	KindValidation
	KindAuth
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "backend"
	}
}

// AppError is an error with a kind and a client-safe message.
// Err is kept for logging only and is never sent to the client.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

// NewAuthError creates an authentication error.
func NewAuthError(code, message string) *AppError {
	return &AppError{Kind: KindAuth, Code: code, Message: message}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

// NewBackendError wraps a storage failure.
func NewBackendError(message string, err error) *AppError {
	return &AppError{Kind: KindBackend, Code: ErrCodeInternalError, Message: message, Err: err}
}

// KindOf returns the kind of err. Errors that are not AppErrors are backend errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindBackend
}

// Common domain errors
var (
	ErrInvalidJSON         = NewValidationError(ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrArrayExpected       = NewValidationError(ErrCodeArrayExpected, "Array expected")
	ErrDuplicateID         = NewValidationError(ErrCodeDuplicateID, "A product with this id already exists")
	ErrCredentialsRequired = NewValidationError(ErrCodeMissingField, "username/password required")
	ErrPasswordsRequired   = NewValidationError(ErrCodeMissingField, "oldPassword and newPassword required")
	ErrPasswordTooLong     = NewValidationError(ErrCodePasswordTooLong, "newPassword must be at most 72 bytes")
	ErrFileRequired        = NewValidationError(ErrCodeFileRequired, "File required")
	ErrFileTooLarge        = NewValidationError(ErrCodeFileTooLarge, "File exceeds the upload size limit")
	ErrProductNotFound     = NewNotFoundError(ErrCodeProductNotFound, "Not found")
	ErrUserNotFound        = NewNotFoundError(ErrCodeUserNotFound, "User not found")
	ErrMissingToken        = NewAuthError(ErrCodeUnauthorised, "No token")
	ErrInvalidToken        = NewAuthError(ErrCodeUnauthorised, "Invalid token")
	ErrInvalidCredentials  = NewAuthError(ErrCodeInvalidCredentials, "Invalid credentials")
	ErrWrongOldPassword    = NewAuthError(ErrCodeInvalidCredentials, "Old password incorrect")
)
