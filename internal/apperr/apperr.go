// Package apperr defines the domain error taxonomy shared by all services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error. Transport layers map kinds to status
// codes; the services themselves never see HTTP.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidOperation
	KindAuthentication
	KindPermissionDenied
	KindInternal
)

// Error is a typed domain error with a machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Machine error codes carried in the response envelope.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeItemNotFound      = "ITEM_NOT_FOUND"
	CodeUserAlreadyExists = "USER_ALREADY_EXISTS"
	CodeItemAlreadyExists = "ITEM_ALREADY_EXISTS"
	CodeInvalidOperation  = "INVALID_OPERATION"
	CodeAuthentication    = "AUTHENTICATION_ERROR"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeInternal          = "INTERNAL_ERROR"
)

// Validation reports malformed or missing input for the named field.
func Validation(field, reason string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s %s", field, reason),
	}
}

// UserNotFound reports an unknown user id.
func UserNotFound(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeUserNotFound,
		Message: fmt.Sprintf("user not found: %s", id),
	}
}

// ItemNotFound reports an unknown catalog code.
func ItemNotFound(code string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeItemNotFound,
		Message: fmt.Sprintf("item not found: %s", code),
	}
}

// UserAlreadyExists reports an email uniqueness violation.
func UserAlreadyExists(email string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    CodeUserAlreadyExists,
		Message: fmt.Sprintf("email already registered: %s", email),
	}
}

// ItemAlreadyExists reports a catalog code uniqueness violation.
func ItemAlreadyExists(code string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    CodeItemAlreadyExists,
		Message: fmt.Sprintf("item already exists: %s", code),
	}
}

// InvalidOperation reports an illegal state transition, e.g. lending an
// item that is already borrowed.
func InvalidOperation(msg string) *Error {
	return &Error{
		Kind:    KindInvalidOperation,
		Code:    CodeInvalidOperation,
		Message: msg,
	}
}

// Authentication reports bad credentials, an inactive account, or an
// invalid or expired session.
func Authentication(msg string) *Error {
	return &Error{
		Kind:    KindAuthentication,
		Code:    CodeAuthentication,
		Message: msg,
	}
}

// PermissionDenied reports a role lacking the required permission.
func PermissionDenied(msg string) *Error {
	return &Error{
		Kind:    KindPermissionDenied,
		Code:    CodePermissionDenied,
		Message: msg,
	}
}

// Internal wraps an unexpected collaborator failure, retaining the cause
// for diagnostics.
func Internal(msg string, err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: msg,
		Err:     err,
	}
}

// KindOf extracts the Kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf extracts the machine code from err, or CodeInternal for foreign
// errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf extracts the human-readable message from err without the
// wrapped cause, falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
