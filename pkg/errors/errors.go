package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so cloned or wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Application codes returned alongside every apply/revive outcome.
const (
	CodeSuccess          = "OCMS-2000"
	CodeAlreadyApplied   = "OCMS-2001"
	CodeSourceNotAllowed = "OCMS-4000"
	CodeInvalidNotice    = "OCMS-4001"
	CodeStageNotEligible = "OCMS-4002"
	CodeNoticePaid       = "OCMS-4003"
	CodeConflict         = "OCMS-4004"
	CodeNotSuspended     = "OCMS-4005"
	CodeMissingField     = "OCMS-4006"
	CodeSystemError      = "OCMS-4007"
)

// Suspension outcomes.
var (
	ErrSourceNotAuthorized = New(CodeSourceNotAllowed, http.StatusForbidden, "source not authorized for this suspension code")
	ErrInvalidNotice       = New(CodeInvalidNotice, http.StatusNotFound, "invalid notice number")
	ErrStageNotEligible    = New(CodeStageNotEligible, http.StatusUnprocessableEntity, "notice processing stage not eligible")
	ErrNoticePaid          = New(CodeNoticePaid, http.StatusUnprocessableEntity, "notice has been paid")
	ErrSuspensionConflict  = New(CodeConflict, http.StatusConflict, "notice already suspended")
	ErrNotSuspended        = New(CodeNotSuspended, http.StatusUnprocessableEntity, "notice is not currently suspended")
	ErrMissingField        = New(CodeMissingField, http.StatusBadRequest, "mandatory field missing")
	ErrSystem              = New(CodeSystemError, http.StatusInternalServerError, "System error. Please inform Administrator")
)

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrStaleVersion = New("STALE_VERSION", http.StatusConflict, "record modified concurrently")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
