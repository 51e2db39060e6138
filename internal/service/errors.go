package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorKind classifies every failure a core operation may return. Handlers
// map kinds to transport status codes; the core never formats user-facing
// prose beyond the kind and a short reason.
type ErrorKind int

const (
	// KindValidation marks malformed or out-of-range input.
	KindValidation ErrorKind = iota + 1
	// KindNotFound marks a missing assignment, submission or user.
	KindNotFound
	// KindAccessDenied marks a caller lacking ownership or visibility.
	KindAccessDenied
	// KindDuplicate marks a second submission for an already-submitted pair.
	KindDuplicate
)

// Error is the classified error type returned by core operations.
type Error struct {
	Kind   ErrorKind
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// NewValidationError builds a validation failure with a field-level reason.
func NewValidationError(field, reason string) *Error {
	return &Error{Kind: KindValidation, Field: field, Reason: reason}
}

// NewNotFoundError builds a not-found failure for the named entity.
func NewNotFoundError(entity string) *Error {
	return &Error{Kind: KindNotFound, Reason: entity + " not found"}
}

// NewAccessDeniedError builds an access failure with the given reason.
func NewAccessDeniedError(reason string) *Error {
	return &Error{Kind: KindAccessDenied, Reason: reason}
}

// NewDuplicateError builds a duplicate-submission failure.
func NewDuplicateError(reason string) *Error {
	return &Error{Kind: KindDuplicate, Reason: reason}
}

func isKind(err error, kind ErrorKind) bool {
	var coreErr *Error
	return errors.As(err, &coreErr) && coreErr.Kind == kind
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsAccessDenied reports whether err is an access failure.
func IsAccessDenied(err error) bool { return isKind(err, KindAccessDenied) }

// IsDuplicate reports whether err is a duplicate-submission failure.
func IsDuplicate(err error) bool { return isKind(err, KindDuplicate) }

// validationError converts validator.Struct output into the core error type,
// keeping the first offending field as the reported one.
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return NewValidationError(first.Field(), fmt.Sprintf("failed on the %q rule", first.Tag()))
	}
	return NewValidationError("", err.Error())
}
