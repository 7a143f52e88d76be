// Package apperr classifies request failures and maps them to HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindStore
	KindUnsupportedMedia
	KindTooLarge
)

func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindStore:
		return "store_error"
	case KindUnsupportedMedia:
		return "unsupported_media_type"
	case KindTooLarge:
		return "payload_too_large"
	default:
		return "internal_error"
	}
}

func (k Kind) String() string { return k.Code() }

// Error is what handlers attach to the request; the translator turns it into a response.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string, details interface{}) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// From returns err as an *Error, wrapping anything uncategorized as KindInternal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

type Mode string

const (
	// ModeStrict gives each kind its own status.
	ModeStrict Mode = "strict"
	// ModeCompat keeps 400 for bad input and answers every other handled failure with 404
	// for legacy clients. Uncategorized errors stay 500.
	ModeCompat Mode = "compat"
)

type StatusPolicy struct {
	Mode Mode
}

// NewStatusPolicy falls back to strict for unknown modes.
func NewStatusPolicy(mode string) StatusPolicy {
	if Mode(mode) == ModeCompat {
		return StatusPolicy{Mode: ModeCompat}
	}
	return StatusPolicy{Mode: ModeStrict}
}

func (p StatusPolicy) Status(k Kind) int {
	if k == KindInternal {
		return http.StatusInternalServerError
	}
	if k == KindValidation {
		return http.StatusBadRequest
	}
	// transport-level rejections never reached a handler, so both modes agree
	if k == KindUnsupportedMedia {
		return http.StatusUnsupportedMediaType
	}
	if k == KindTooLarge {
		return http.StatusRequestEntityTooLarge
	}

	if p.Mode == ModeCompat {
		return http.StatusNotFound
	}

	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// CreatedStatus is the success status for resource creation.
func (p StatusPolicy) CreatedStatus() int {
	if p.Mode == ModeCompat {
		return http.StatusOK
	}
	return http.StatusCreated
}
