package delivery

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
)

// Application error codes.
const (
	ECONFLICT     = "conflict"
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized"
)

const DefaultErrorMessage = "An internal error has occurred. Please contact technical support."

// Error is the error type returned by use cases and repositories.
// Code and Message are meant for the caller, Op and Err build the trace.
type Error struct {
	Code    string
	Message string
	Op      string
	Err     error
	Fields  map[string]interface{}
}

func (e *Error) Error() string {
	var buf bytes.Buffer

	if e.Op != "" {
		fmt.Fprintf(&buf, "%s: ", e.Op)
	}

	if e.Err != nil {
		buf.WriteString(e.Err.Error())
	} else {
		if e.Code != "" {
			fmt.Fprintf(&buf, "<%s> ", e.Code)
		}
		buf.WriteString(e.Message)
	}

	return buf.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// OpError wraps err with the name of the operation that failed.
func OpError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// ErrorWithCode wraps err with an explicit code, keeping err as the cause.
func ErrorWithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// NewError builds a coded error with a public message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ErrorCode returns the first code found in the error chain.
// Errors that carry no code are internal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return EINTERNAL
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Err != nil {
		return ErrorCode(e.Err)
	}
	return EINTERNAL
}

// ErrorMessage returns the first message found in the error chain.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return DefaultErrorMessage
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return ErrorMessage(e.Err)
	}
	return DefaultErrorMessage
}

// ErrorFields returns the first non-empty Fields found in the error chain.
func ErrorFields(err error) map[string]interface{} {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}
	if len(e.Fields) > 0 {
		return e.Fields
	}
	if e.Err != nil {
		return ErrorFields(e.Err)
	}
	return nil
}

func ErrCodeToHTTPStatus(err error) int {
	switch ErrorCode(err) {
	case ECONFLICT:
		return http.StatusConflict
	case EINVALID:
		return http.StatusBadRequest
	case ENOTFOUND:
		return http.StatusNotFound
	case EUNAUTHORIZED:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
