package scrapemaster

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be generic enough to carry across process boundaries
// while still mapping cleanly onto the failure modes of the pipeline:
// EFETCH covers page rendering failures, EUNAVAILABLE covers model
// endpoint transport failures, EUNAUTHORIZED covers bad keys and
// exhausted quotas, EMODEL covers endpoint-reported completion failures,
// and EPARSE covers unusable model output.
const (
	EFETCH        = "fetch"
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	EMODEL        = "model"
	ENOTFOUND     = "not_found"
	EPARSE        = "parse"
	EUNAUTHORIZED = "unauthorized"
	EUNAVAILABLE  = "unavailable"
)

// Error represents an application-specific error. Application errors can
// be unwrapped by the caller to extract the machine-readable code.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("scrapemaster error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
