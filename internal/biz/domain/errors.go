package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so transports can map them
type ErrorKind string

const (
	KindMissingParameter    ErrorKind = "missing_parameter"
	KindInvalidPayload      ErrorKind = "invalid_payload"
	KindInvalidParticipants ErrorKind = "invalid_participants"
	KindNotFound            ErrorKind = "not_found"
	KindInvalidOperation    ErrorKind = "invalid_operation"
	KindForbidden           ErrorKind = "forbidden"
	KindTransient           ErrorKind = "transient_dependency_failure"
)

// Error is a classified domain error
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
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

// KindOf returns the kind of a domain error, or "" for anything else
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func MissingParameter(name string) error {
	return &Error{Kind: KindMissingParameter, Message: "missing " + name}
}

func InvalidPayload(msg string) error {
	return &Error{Kind: KindInvalidPayload, Message: msg}
}

func InvalidParticipants(msg string) error {
	return &Error{Kind: KindInvalidParticipants, Message: msg}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func InvalidOperation(msg string) error {
	return &Error{Kind: KindInvalidOperation, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// TransientDependencyFailure wraps an error from an external collaborator
// (attachment store, notify transport)
func TransientDependencyFailure(dependency string, err error) error {
	return &Error{Kind: KindTransient, Message: dependency + " unavailable", Err: err}
}
