// Package apperr holds the error taxonomy shared by the backend and the portal.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrPermission   = errors.New("not authorized")
	ErrInvalidState = errors.New("invalid state")
	ErrAuth         = errors.New("authentication required")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrNetwork      = errors.New("backend unreachable")
	ErrTimeout      = errors.New("request timed out")
	ErrUnavailable  = errors.New("service unavailable")
)

// Error carries a human-readable detail next to one of the sentinel kinds.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// New wraps kind with a formatted detail message.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return New(ErrValidation, format, args...) }
func Permission(format string, args ...any) error { return New(ErrPermission, format, args...) }
func InvalidState(format string, args ...any) error {
	return New(ErrInvalidState, format, args...)
}
func Auth(format string, args ...any) error     { return New(ErrAuth, format, args...) }
func NotFound(format string, args ...any) error { return New(ErrNotFound, format, args...) }
func Conflict(format string, args ...any) error { return New(ErrConflict, format, args...) }

// Detail returns the message meant for a human, without the kind prefix.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

var kinds = []struct {
	err    error
	code   string
	status int
}{
	{ErrValidation, "validation_error", http.StatusBadRequest},
	{ErrPermission, "permission_denied", http.StatusForbidden},
	{ErrInvalidState, "invalid_state", http.StatusConflict},
	{ErrAuth, "unauthorized", http.StatusUnauthorized},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrConflict, "conflict", http.StatusConflict},
	{ErrNetwork, "network_error", http.StatusBadGateway},
	{ErrTimeout, "timeout", http.StatusGatewayTimeout},
	{ErrUnavailable, "unavailable", http.StatusServiceUnavailable},
}

// Code is the short machine-readable kind name used in response bodies.
func Code(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return "internal_error"
}

// HTTPStatus maps err to the response status the API uses for it.
func HTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// FromStatus rebuilds a typed error from an API response.
// 409 is ambiguous on the wire, so the body code decides between conflict and invalid state.
func FromStatus(status int, code, detail string) error {
	if status == http.StatusConflict && code == "conflict" {
		return &Error{Kind: ErrConflict, Msg: detail}
	}
	for _, k := range kinds {
		if k.status == status {
			return &Error{Kind: k.err, Msg: detail}
		}
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	return fmt.Errorf("unexpected status %d: %s", status, detail)
}
