// Package errors defines the typed error codes shared by services and the
// HTTP layer. Services return *Error; api/responses maps the code to a status
// and an envelope.
package errors

import (
	stderrors "errors"
	"net/http"
)

type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeConflict            Code = "CONFLICT"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeStateConflict       Code = "STATE_CONFLICT"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeIdempotency         Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit           Code = "RATE_LIMIT_EXCEEDED"
	CodeDependency          Code = "DEPENDENCY_ERROR"
	CodeInternal            Code = "INTERNAL_ERROR"
)

// Metadata is how a code is presented to API callers.
type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// Retryable marks failures a client may repeat unchanged.
	Retryable bool
	// DetailsAllowed exposes Error.Details in the response body.
	DetailsAllowed bool
}

type flag uint8

const (
	retryable flag = 1 << iota
	withDetails
)

func meta(status int, public string, flags flag) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      flags&retryable != 0,
		DetailsAllowed: flags&withDetails != 0,
	}
}

var registry = map[Code]Metadata{
	CodeValidation:          meta(http.StatusBadRequest, "validation failed", withDetails),
	CodeUnauthorized:        meta(http.StatusUnauthorized, "authentication required", 0),
	CodeForbidden:           meta(http.StatusForbidden, "access denied", 0),
	CodeNotFound:            meta(http.StatusNotFound, "resource not found", 0),
	CodeConflict:            meta(http.StatusConflict, "conflict detected", 0),
	CodeInvalidTransition:   meta(http.StatusUnprocessableEntity, "listing transition not allowed", withDetails),
	CodeStateConflict:       meta(http.StatusUnprocessableEntity, "state transition disallowed", withDetails),
	CodeConcurrencyConflict: meta(http.StatusConflict, "resource was modified concurrently", retryable|withDetails),
	CodeInsufficientBalance: meta(http.StatusUnprocessableEntity, "insufficient balance", withDetails),
	CodeIdempotency:         meta(http.StatusConflict, "idempotency key reused", withDetails),
	CodeRateLimit:           meta(http.StatusTooManyRequests, "rate limit exceeded", 0),
	CodeDependency:          meta(http.StatusServiceUnavailable, "dependency unavailable", retryable|withDetails),
	CodeInternal:            meta(http.StatusInternalServerError, "internal server error", retryable),
}

// MetadataFor falls back to CodeInternal for unregistered codes.
func MetadataFor(code Code) Metadata {
	if m, ok := registry[code]; ok {
		return m
	}
	return registry[CodeInternal]
}

// Error is a coded failure with an optional cause and caller-facing details.
// A nil *Error behaves as an internal error with no message.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// WithDetails replaces the details and returns e for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.code) + ": " + e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stderrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether the outermost *Error in err's chain carries code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
