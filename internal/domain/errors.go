package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced through a GenerationResult.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindTemplate   Kind = "TemplateError"
	KindInput      Kind = "InputError"
	KindAPI        Kind = "ApiError"
	KindStorage    Kind = "StorageError"
)

// Error is a tagged failure. Its message always starts with the kind so that
// callers reading only GenerationResult.Error can still tell failures apart.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrTemplate   = &Error{Kind: KindTemplate}
	ErrInput      = &Error{Kind: KindInput}
	ErrAPI        = &Error{Kind: KindAPI}
	ErrStorage    = &Error{Kind: KindStorage}
)

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality against a bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Templatef(format string, args ...any) error {
	return &Error{Kind: KindTemplate, Msg: fmt.Sprintf(format, args...)}
}

func InputError(msg string, err error) error {
	return &Error{Kind: KindInput, Msg: msg, Err: err}
}

func APIError(msg string, err error) error {
	return &Error{Kind: KindAPI, Msg: msg, Err: err}
}

func StorageError(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
