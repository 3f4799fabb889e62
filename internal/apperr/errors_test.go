package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", Validation("amount must be positive"), http.StatusBadRequest, "validation_error"},
		{"permission", Permission("hr only"), http.StatusForbidden, "permission_denied"},
		{"invalid state", InvalidState("claim already approved"), http.StatusConflict, "invalid_state"},
		{"auth", Auth("token expired"), http.StatusUnauthorized, "unauthorized"},
		{"not found", NotFound("claim not found"), http.StatusNotFound, "not_found"},
		{"conflict", Conflict("email taken"), http.StatusConflict, "conflict"},
		{"wrapped", fmt.Errorf("review: %w", InvalidState("terminal")), http.StatusConflict, "invalid_state"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
			if got := Code(tt.err); got != tt.code {
				t.Errorf("Code() = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestFromStatusRoundTrip(t *testing.T) {
	errs := []error{
		Validation("bad"), Permission("no"), InvalidState("done"), Auth("expired"),
		NotFound("missing"), Conflict("dup"),
	}
	for _, in := range errs {
		out := FromStatus(HTTPStatus(in), Code(in), Detail(in))
		var e *Error
		if !errors.As(out, &e) {
			t.Fatalf("FromStatus(%v) did not return *Error", in)
		}
		if !errors.Is(out, e.Kind) || Code(out) != Code(in) {
			t.Errorf("round trip of %q gave kind %q", Code(in), Code(out))
		}
		if Detail(out) != Detail(in) {
			t.Errorf("detail = %q, want %q", Detail(out), Detail(in))
		}
	}
}

func TestDetailFallsBackToKind(t *testing.T) {
	err := &Error{Kind: ErrTimeout}
	if Detail(err) != ErrTimeout.Error() {
		t.Errorf("Detail() = %q", Detail(err))
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("expected errors.Is to match the kind")
	}
}
