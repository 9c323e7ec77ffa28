// Package errors defines the coded errors badgeforge reports to callers.
//
// Every failure that can reach a user carries a [Code]. Codes split into
// caller mistakes, which reject a render before anything is drawn, and
// server-side failures:
//
//	INVALID_INPUT INVALID_SPEC UNKNOWN_LAYER UNKNOWN_SHAPE INVALID_FORMAT INVALID_PATH
//	    the document or request is wrong (HTTP 400, CLI exit 2)
//	NOT_FOUND           a requested template does not exist (HTTP 404)
//	TIMEOUT             the render was cancelled or ran out of time (HTTP 504)
//	RESOURCE_NOT_FOUND  a font or asset the server needs is missing
//	INTERNAL_ERROR      anything else
//
// Build errors with [New] or attach a code to an existing error with [Wrap]:
//
//	return errors.New(errors.ErrCodeUnknownLayer, "unknown layer type: %q", tag)
//	return errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode layer %d", i)
//
// The package shadows the standard library name; import the latter as
// stderrors where both are needed.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSpec   Code = "INVALID_SPEC"
	ErrCodeUnknownLayer  Code = "UNKNOWN_LAYER"
	ErrCodeUnknownShape  Code = "UNKNOWN_SHAPE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeResourceNotFound Code = "RESOURCE_NOT_FOUND"
	ErrCodeTimeout          Code = "TIMEOUT"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
)

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidSpec:   http.StatusBadRequest,
	ErrCodeUnknownLayer:  http.StatusBadRequest,
	ErrCodeUnknownShape:  http.StatusBadRequest,
	ErrCodeInvalidFormat: http.StatusBadRequest,
	ErrCodeInvalidPath:   http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeTimeout:       http.StatusGatewayTimeout,
}

// HTTPStatus is the response status for c; unknown and server-side codes
// map to 500.
func (c Code) HTTPStatus() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Client reports whether c blames the caller's input.
func (c Code) Client() bool { return c.HTTPStatus() == http.StatusBadRequest }

// Error pairs a Code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error whose cause is err.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// IsClientError reports whether err should be answered with 400: the
// document or request was malformed and the render never started.
func IsClientError(err error) bool { return GetCode(err).Client() }

// UserMessage is err's text without code prefixes, suitable for a response
// body or terminal.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}
