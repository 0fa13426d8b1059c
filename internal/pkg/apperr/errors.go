package apperr

import (
	"errors"
	"net/http"
	"strings"
)

type Kind string

const (
	KindAuth        Kind = "AUTH_ERROR"
	KindValidation  Kind = "VALIDATION_ERROR"
	KindInvalidCode Kind = "INVALID_CODE"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindUnavailable Kind = "UNAVAILABLE"
)

// Error is the single error shape surfaced to dialogs. Message is already
// human readable; Status is the HTTP status when the error came off the wire.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return strings.ToLower(string(e.Kind))
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind. A target without a message (the package sentinels)
// matches every message of that kind; a target with one must match it too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrAuth        = &Error{Kind: KindAuth}
	ErrValidation  = &Error{Kind: KindValidation}
	ErrInvalidCode = &Error{Kind: KindInvalidCode}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrUnavailable = &Error{Kind: KindUnavailable}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

// FromStatus classifies a non-2xx response. Operations that know better
// (login, code verification) reclassify with Remap.
func FromStatus(status int, detail string) *Error {
	kind := KindUnavailable
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusConflict:
		kind = KindConflict
	}
	return &Error{Kind: kind, Message: detail, Status: status}
}

// Remap rewrites the kind of err when it is an *Error carrying the given status.
func Remap(err error, status int, kind Kind) error {
	var e *Error
	if !errors.As(err, &e) || e.Status != status {
		return err
	}
	return &Error{Kind: kind, Message: e.Message, Status: e.Status, Err: e.Err}
}

// Transport wraps a failure that never produced a response.
func Transport(err error) *Error {
	return &Error{Kind: KindUnavailable, Err: err}
}

// Message returns the text shown in the inline error panel.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
