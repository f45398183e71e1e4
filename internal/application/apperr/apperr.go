// Package apperr classifies failures into the five error kinds returned to
// API callers.
package apperr

import (
	"errors"
	"net/http"

	"client-manager-api/internal/domain/client"
)

type Kind string

const (
	KindBadRequest Kind = "BAD_REQUEST"
	KindValidation Kind = "VALIDATION_ERROR"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindInternal   Kind = "INTERNAL_ERROR"
)

const (
	MsgValidation    = "Error en la validación de datos"
	MsgEmailConflict = "El email ya existe en el sistema"
	MsgNotFound      = "Recurso no encontrado"
	MsgInternal      = "Error interno del servidor"
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message and Details are safe to show to
// callers; Err keeps the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Details map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Validation(details map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: MsgValidation, Details: details}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Message: MsgEmailConflict, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// Classify maps any error onto one of the five kinds. Errors that are
// already classified pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	switch {
	case errors.Is(err, client.ErrEmailConflict):
		return Conflict(err)
	case errors.Is(err, client.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: MsgNotFound, Err: err}
	default:
		return Internal(err)
	}
}
