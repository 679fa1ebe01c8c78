package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestFactoriesCarryCodeAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantCode   string
		wantStatus int
	}{
		{"validation", Validation("bad input"), CodeValidation, 400},
		{"validation field", ValidationField("title", "required"), CodeValidation, 400},
		{"invalid hierarchy", InvalidHierarchy("type mismatch"), CodeInvalidHierarchy, 400},
		{"incomplete publication", IncompletePublication("no content"), CodeIncompletePublication, 400},
		{"unauthorized", Unauthorized(), CodeUnauthorized, 401},
		{"forbidden", Forbidden(""), CodeForbidden, 403},
		{"not found", NotFound("book"), CodeNotFound, 404},
		{"conflict", Conflict("already published"), CodeConflict, 409},
		{"internal", Internal(), CodeInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
		})
	}
}

// Wrapped errors must still unwrap to the coded value so the response
// writer can recover the status.
func TestErrorsAsThroughWrapping(t *testing.T) {
	base := NotFound("category")
	wrapped := fmt.Errorf("find category: %w", base)

	var ae *Error
	if !errors.As(wrapped, &ae) {
		t.Fatal("errors.As failed to recover the coded error")
	}
	if ae.Status != 404 {
		t.Errorf("status = %d, want 404", ae.Status)
	}
}

func TestErrorString(t *testing.T) {
	e := ValidationField("email", "invalid email address")
	got := e.Error()
	want := "[VALIDATION] invalid email address (field: email)"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
