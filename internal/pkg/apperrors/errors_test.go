package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NewResourceNotFoundError("Offer not found"), ErrResourceNotFound},
		{"conflict", NewConflictError("Offer already taken"), ErrConflict},
		{"forbidden", NewForbiddenError("Not the offerer"), ErrPermissionDenied},
		{"validation", NewValidationError("Sections are not parallel"), ErrValidationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.sentinel) {
				t.Errorf("%v should match sentinel %v", tc.err, tc.sentinel)
			}
		})
	}
}

func TestCustomErrorMessage(t *testing.T) {
	err := NewConflictError("Offer already taken or cancelled")
	if err.Error() != "Offer already taken or cancelled" {
		t.Errorf("expected message text, got %q", err.Error())
	}

	bare := &CustomError{Err: ErrConflict}
	if bare.Error() != "conflict" {
		t.Errorf("expected sentinel text fallback, got %q", bare.Error())
	}
}

func TestCustomErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("taking offer 3: %w", NewConflictError("lost the race"))

	if !errors.Is(err, ErrConflict) {
		t.Error("wrapped custom error should still match its sentinel")
	}

	var custom *CustomError
	if !errors.As(err, &custom) {
		t.Fatal("expected to recover CustomError via errors.As")
	}
	if custom.Message != "lost the race" {
		t.Errorf("unexpected message %q", custom.Message)
	}
}

func TestIsMatchesAnyInList(t *testing.T) {
	err := NewResourceNotFoundError("missing")
	if !Is(err, ErrConflict, ErrPermissionDenied, ErrResourceNotFound) {
		t.Error("Is should match a sentinel in the extra list")
	}
	if Is(err, ErrConflict, ErrPermissionDenied) {
		t.Error("Is should not match unrelated sentinels")
	}
}

func TestNewCustomErrorCarriesCodeAndDetails(t *testing.T) {
	err := NewCustomError(ErrConflict, "offer already taken").
		WithCode("RES_002").
		WithDetails(map[string]interface{}{"offerId": int64(7)})

	if !errors.Is(err, ErrConflict) {
		t.Error("expected custom error to wrap the conflict sentinel")
	}
	if err.Error() != "offer already taken" {
		t.Errorf("expected message to win over sentinel text, got %q", err.Error())
	}
	if err.Code != "RES_002" {
		t.Errorf("expected code RES_002, got %q", err.Code)
	}
	if got, ok := err.Details["offerId"].(int64); !ok || got != 7 {
		t.Errorf("expected offerId detail 7, got %v", err.Details["offerId"])
	}
}
