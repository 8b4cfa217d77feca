// Package apperrors carries the machine-readable error taxonomy shared by
// every service and surfaced through the gateway's error envelope.
package apperrors

import (
	"fmt"
	"net/http"
)

// Code is one of the machine codes from the public error taxonomy.
type Code string

const (
	CodeInvalidInitData    Code = "invalid_init_data"
	CodeExpiredInitData    Code = "expired_init_data"
	CodeInvalidToken       Code = "invalid_token"
	CodeMissingAuth        Code = "missing_auth"
	CodeValidationError    Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeRateLimited        Code = "rate_limited"
	CodeBlockedUser        Code = "blocked_user"
	CodeForbidden          Code = "forbidden"
	CodeInternalError      Code = "internal_error"
	CodeServiceUnavailable Code = "service_unavailable"
)

// HttpError is the error type every layer above the repositories returns.
// It carries the wire-level code, a human message, the wrapped cause (for
// logs only) and optional per-field details.
type HttpError struct {
	Status  int                    `json:"-"`
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

// New builds an HttpError with the given HTTP status / code / message.
func New(status int, code Code, message string) *HttpError {
	return &HttpError{Status: status, Code: code, Message: message}
}

// Wrap attaches an internal cause to a copy of a sentinel error, for logging
// context without leaking the cause to the client.
func Wrap(base *HttpError, err error) *HttpError {
	cp := *base
	cp.Err = err
	return &cp
}

// WithDetails attaches per-field validation messages to a copy of a sentinel error.
func WithDetails(base *HttpError, details map[string]interface{}) *HttpError {
	cp := *base
	cp.Details = details
	return &cp
}

// Sentinel errors, one per taxonomy entry in spec.md §6.1 plus the
// component-specific ones named in §4.2's error taxonomy.
var (
	ErrInvalidInitData    = New(http.StatusBadRequest, CodeInvalidInitData, "telegram init data failed verification")
	ErrExpiredInitData    = New(http.StatusUnauthorized, CodeExpiredInitData, "telegram init data is too old")
	ErrInvalidToken       = New(http.StatusUnauthorized, CodeInvalidToken, "bearer token is invalid or expired")
	ErrMissingAuth        = New(http.StatusUnauthorized, CodeMissingAuth, "authorization header is missing")
	ErrValidation         = New(http.StatusUnprocessableEntity, CodeValidationError, "request failed validation")
	ErrNotFound           = New(http.StatusNotFound, CodeNotFound, "resource not found")
	ErrConflict           = New(http.StatusConflict, CodeConflict, "request conflicts with existing state")
	ErrRateLimited        = New(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
	ErrBlockedUser        = New(http.StatusForbidden, CodeBlockedUser, "user is blocked")
	ErrForbidden          = New(http.StatusForbidden, CodeForbidden, "operation not permitted")
	ErrInternal           = New(http.StatusInternalServerError, CodeInternalError, "internal error")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "upstream service unavailable")
)

// FieldErrors is a convenience constructor for 422 validation responses
// carrying per-field messages (spec.md §4.3).
func FieldErrors(fields map[string]string) *HttpError {
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return WithDetails(ErrValidation, details)
}
