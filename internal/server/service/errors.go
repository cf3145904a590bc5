package service

import (
	"errors"
	"fmt"
)

// Kind classifies service errors. The HTTP layer maps each kind to exactly
// one status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindUnauthorized
	KindInvalidCredentials
	KindTokenExpired
	KindForbidden
	KindStorage
	KindHashing
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindTokenExpired:
		return "token expired"
	case KindForbidden:
		return "forbidden"
	case KindStorage:
		return "storage"
	case KindHashing:
		return "hashing"
	default:
		return "internal"
	}
}

// Error is a classified error. Message is safe to show to clients;
// Err holds the underlying cause for logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Internal kinds never expose their message or cause to clients.
func (k Kind) Internal() bool {
	return k == KindInternal || k == KindStorage || k == KindHashing
}

var (
	errInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	errUnauthorized       = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	errTaskNotFound       = &Error{Kind: KindNotFound, Message: "todo not found"}
)

func validationError(err error) error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

func storageError(op string, err error) error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

func hashingError(err error) error {
	return &Error{Kind: KindHashing, Message: "password hashing failed", Err: err}
}
