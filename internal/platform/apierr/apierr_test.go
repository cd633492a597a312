package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", BadRequest("query required"))
	if got := StatusOf(err); got != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d", http.StatusBadRequest, got)
	}
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("status: want=%d got=%d", http.StatusInternalServerError, got)
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	e := Internal("Failed to search knowledge base", cause)
	if e.Error() != "Failed to search knowledge base: dial tcp: refused" {
		t.Fatalf("message: got=%q", e.Error())
	}
	if !errors.Is(e, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if New(http.StatusTeapot, "", nil).Error() != "api error (418)" {
		t.Fatalf("status-only message mismatch")
	}
}
