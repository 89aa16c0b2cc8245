package testutil

import (
	"testing"

	apperrors "stocketl/internal/errors"
)

// AssertAppError checks that err carries the expected pipeline error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	code := apperrors.CodeOf(err)
	if code == "" {
		t.Fatalf("expected pipeline error, got %T: %v", err, err)
	}
	if code != expectedCode {
		t.Errorf("expected error code %q, got %q (error: %v)", expectedCode, code, err)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
