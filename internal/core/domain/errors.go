// Package domain defines the core records of the WizNote sync client.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a client error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "WIZ-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthenticated indicates an operation needs a token but none is held.
	ErrUnauthenticated = NewDomainError("WIZ-AUTH-4010", "not authenticated")

	// ErrInvalidPassword indicates the password does not match the user.
	ErrInvalidPassword = NewDomainError("WIZ-AUTH-4011", "invalid password")

	// ErrTokenExpired indicates the server rejected the session token.
	ErrTokenExpired = NewDomainError("WIZ-AUTH-4012", "token expired or invalid")

	// ErrInvalidUser indicates the user id is unknown to the account server.
	ErrInvalidUser = NewDomainError("WIZ-AUTH-4041", "invalid user")

	// ErrTooManyLogins indicates the account server throttled login attempts.
	ErrTooManyLogins = NewDomainError("WIZ-AUTH-4290", "too many login attempts")
)

// ============================================================================
// Server / Transport Errors (SRV, NET)
// ============================================================================

var (
	// ErrServer indicates a non-success HTTP status or return code.
	ErrServer = NewDomainError("WIZ-SRV-5000", "server error")

	// ErrMalformedResponse indicates the response body could not be decoded.
	ErrMalformedResponse = NewDomainError("WIZ-SRV-5020", "malformed response")

	// ErrTransport indicates the request never produced a response.
	ErrTransport = NewDomainError("WIZ-NET-5030", "transport error")
)

// ============================================================================
// Sync Errors (SYNC)
// ============================================================================

var (
	// ErrPaginationStalled indicates a full page did not advance the cursor.
	ErrPaginationStalled = NewDomainError("WIZ-SYNC-5081", "pagination cursor did not advance")

	// ErrPaginationLimit indicates the page limit was reached before a short page.
	ErrPaginationLimit = NewDomainError("WIZ-SYNC-5082", "pagination page limit reached")
)

// ============================================================================
// Storage / Argument Errors (STOR, ARG)
// ============================================================================

var (
	// ErrSessionNotFound indicates no remembered session exists.
	ErrSessionNotFound = NewDomainError("WIZ-STOR-4040", "no saved session")

	// ErrStorage indicates a local storage failure.
	ErrStorage = NewDomainError("WIZ-STOR-5001", "storage error")

	// ErrInvalidArgument indicates an argument or setting has an unusable value.
	ErrInvalidArgument = NewDomainError("WIZ-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("WIZ-ARG-1002", "missing required argument")
)

// Server return codes carried in the response envelope.
const (
	ReturnCodeOK              = 200
	ReturnCodeInvalidToken    = 301
	ReturnCodeInvalidUser     = 31001
	ReturnCodeInvalidPassword = 31002
	ReturnCodeTooManyLogins   = 31004
)

// ErrorFromReturnCode maps a non-success envelope return code to an error kind.
func ErrorFromReturnCode(code int, message string) *DomainError {
	var base *DomainError
	switch code {
	case ReturnCodeInvalidToken:
		base = ErrTokenExpired
	case ReturnCodeInvalidUser:
		base = ErrInvalidUser
	case ReturnCodeInvalidPassword:
		base = ErrInvalidPassword
	case ReturnCodeTooManyLogins:
		base = ErrTooManyLogins
	default:
		base = ErrServer
	}
	if message == "" {
		return base.WithDetails(fmt.Sprintf("return code %d", code))
	}
	return base.WithDetails(fmt.Sprintf("%s (return code %d)", message, code))
}
