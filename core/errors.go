package core

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so the API layer can map it to an HTTP status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindStateConflict
	KindNotFound
)

// Error carries a stable machine-readable code alongside the message.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var ErrUnauthorized = &Error{Kind: KindUnauthorized, Code: "unauthorized", Msg: "unauthorized"}

func Validationf(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or zero if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CodeOf returns the stable code of err, or "internal" for unclassified errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
