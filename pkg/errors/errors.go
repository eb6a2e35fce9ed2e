// Package errors defines the coded errors that cross the HTTP boundary. Every
// code carries the status it maps to and how much of the error a caller may see.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeConversion  Code = "CONVERSION_ERROR"
	CodeUnknownVAT  Code = "UNKNOWN_VAT_RULE"
	CodeRateLimit   Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal    Code = "INTERNAL_ERROR"
	CodeDependency  Code = "DEPENDENCY_ERROR"
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
)

// Metadata describes how a code is rendered. EchoMessage means the error's own
// message is safe to return instead of PublicMessage.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	EchoMessage    bool
}

// client errors echo their message; server-side ones never do.
var registry = map[Code]Metadata{
	CodeValidation: clientMeta(http.StatusBadRequest, "validation failed", true),
	CodeNotFound:   clientMeta(http.StatusNotFound, "resource not found", false),
	CodeConflict:   clientMeta(http.StatusConflict, "conflict detected", false),
	CodeConversion: clientMeta(http.StatusUnprocessableEntity, "incompatible units", true),
	CodeUnknownVAT: clientMeta(http.StatusUnprocessableEntity, "no vat rule for category", true),
	CodeRateLimit:  clientMeta(http.StatusTooManyRequests, "rate limit exceeded", false),

	CodeInternal:    serverMeta(http.StatusInternalServerError, "internal server error", false),
	CodeDependency:  serverMeta(http.StatusServiceUnavailable, "dependency unavailable", true),
	CodeUnavailable: serverMeta(http.StatusServiceUnavailable, "service unavailable", false),
}

func clientMeta(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, DetailsAllowed: details, EchoMessage: true}
}

func serverMeta(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, DetailsAllowed: details, Retryable: true}
}

// MetadataFor falls back to CodeInternal for codes it does not know.
func MetadataFor(code Code) Metadata {
	if meta, ok := registry[code]; ok {
		return meta
	}
	return registry[CodeInternal]
}

// Coder is implemented by domain errors that know which public code they map to.
type Coder interface {
	Coded() *Error
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code to cause. A nil cause behaves like New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
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

// WithDetails sets structured details in place and returns the receiver.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// PublicMessage is the message a caller is allowed to read.
func (e *Error) PublicMessage() string {
	meta := MetadataFor(e.Code())
	if meta.EchoMessage && e.Message() != "" {
		return e.message
	}
	return meta.PublicMessage
}

// PublicDetails returns nil when the code keeps its details private.
func (e *Error) PublicDetails() any {
	if !MetadataFor(e.Code()).DetailsAllowed {
		return nil
	}
	return e.Details()
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts a typed error from the chain. Domain errors implementing Coder
// are translated into their coded form.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	var coder Coder
	if stdErrors.As(err, &coder) {
		return coder.Coded()
	}
	return nil
}

// Resolve is As with a fallback: untyped errors become CodeInternal.
func Resolve(err error) *Error {
	if typed := As(err); typed != nil {
		return typed
	}
	if err == nil {
		err = stdErrors.New("unknown error")
	}
	return Wrap(CodeInternal, err, "unexpected error")
}

// HasCode reports whether err resolves to code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
