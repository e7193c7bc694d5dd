package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(NotFound, "project not found")
	wrapped := fmt.Errorf("load: %w", base)
	if got := KindOf(wrapped); got != NotFound {
		t.Errorf("KindOf() = %v, want NotFound", got)
	}
	if got := KindOf(errors.New("plain")); got != Internal {
		t.Errorf("KindOf(plain) = %v, want Internal", got)
	}
	if !IsNotFound(wrapped) || IsForbidden(wrapped) {
		t.Error("IsNotFound/IsForbidden mismatch")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		InvalidArgument: http.StatusBadRequest,
		Unauthenticated: http.StatusUnauthorized,
		Forbidden:       http.StatusForbidden,
		NotFound:        http.StatusNotFound,
		Conflict:        http.StatusConflict,
		Internal:        http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := kind.HTTPStatus(); got != want {
			t.Errorf("%v.HTTPStatus() = %d, want %d", kind, got, want)
		}
	}
}

func TestMessageHidesInternal(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(Internal, "query failed", cause)
	if got := MessageOf(err, "server error"); got != "server error" {
		t.Errorf("MessageOf(internal) = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() lost the cause")
	}
	if got := MessageOf(New(Conflict, "exists"), "server error"); got != "exists" {
		t.Errorf("MessageOf(conflict) = %q", got)
	}
}
