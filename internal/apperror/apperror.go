// internal/apperror/apperror.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindForbidden    Kind = "FORBIDDEN"
	KindInvalidState Kind = "INVALID_STATE"
	KindConflict     Kind = "CONFLICT"
	KindNotFound     Kind = "NOT_FOUND"
	KindUnavailable  Kind = "UNAVAILABLE"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// Resources named by Conflict errors.
const (
	ResourceStudent     = "student"
	ResourceFaculty     = "faculty"
	ResourceProject     = "project"
	ResourceApplication = "application"
	ResourceInterview   = "interview"
	ResourceDepartment  = "department"
)

type Error struct {
	Kind     Kind
	Message  string
	Resource string
	Details  interface{}
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func InvalidState(message string) *Error {
	return New(KindInvalidState, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Unavailable(message string, err error) *Error {
	return Wrap(KindUnavailable, message, err)
}

// Conflict reports that resource is already held by another record.
func Conflict(resource, message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Resource: resource}
}

func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ResourceOf returns the contested resource of a Conflict error.
func ResourceOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Resource
	}
	return ""
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
