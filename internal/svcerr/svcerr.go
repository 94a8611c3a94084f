package svcerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service failure into the fixed set of response classes.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindStorage
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "service error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Validation(code string, err error) *Error     { return New(KindValidation, code, err) }
func Authentication(code string, err error) *Error { return New(KindAuthentication, code, err) }
func Authorization(code string, err error) *Error  { return New(KindAuthorization, code, err) }
func NotFound(code string, err error) *Error       { return New(KindNotFound, code, err) }
func Conflict(code string, err error) *Error       { return New(KindConflict, code, err) }
func Storage(code string, err error) *Error        { return New(KindStorage, code, err) }

func Validationf(code, format string, args ...interface{}) *Error {
	return Validation(code, fmt.Errorf(format, args...))
}

// HTTPStatus maps a service error onto the fixed status set. Conflicts map
// to 400 (business-rule violations are caller-fixable).
func HTTPStatus(err error) int {
	var se *Error
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-visible message. Storage failures never leak
// their underlying error text.
func Message(err error) string {
	var se *Error
	if !errors.As(err, &se) {
		return "internal error"
	}
	if se.Kind == KindStorage {
		return "internal error"
	}
	return se.Error()
}
