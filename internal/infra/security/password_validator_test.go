package security

import (
	"errors"
	"testing"
)

func violationCode(t *testing.T, err error) string {
	t.Helper()

	var violation *PasswordValidationError
	if !errors.As(err, &violation) {
		t.Fatalf("err = %v, want *PasswordValidationError", err)
	}
	return violation.Code
}

func TestDefaultPasswordValidator(t *testing.T) {
	validator := DefaultPasswordValidator()

	if err := validator.Validate("Vq7#mPl2xWz9"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}

	if code := violationCode(t, validator.Validate("Ab1")); code != "min_length" {
		t.Fatalf("code = %q, want min_length", code)
	}
	if code := violationCode(t, validator.Validate("12345678901")); code != "letter" {
		t.Fatalf("code = %q, want letter", code)
	}
	if code := violationCode(t, validator.Validate("abcdefghijk")); code != "digit" {
		t.Fatalf("code = %q, want digit", code)
	}
	if code := violationCode(t, validator.Validate("password1")); code != "weak_password" {
		t.Fatalf("code = %q, want weak_password", code)
	}
}

func TestRequireDifferentFrom(t *testing.T) {
	validator := NewPasswordValidator(RequireDifferentFrom("old-password-1"))

	if err := validator.Validate("new-password-2"); err != nil {
		t.Fatalf("different password rejected: %v", err)
	}
	if code := violationCode(t, validator.Validate("old-password-1")); code != "different" {
		t.Fatalf("code = %q, want different", code)
	}
}

func TestPasswordValidator_FirstViolationWins(t *testing.T) {
	validator := NewPasswordValidator(MinLengthRule(8), RequireDigitRule())

	// Both rules fail; the validator reports the first.
	if code := violationCode(t, validator.Validate("abc")); code != "min_length" {
		t.Fatalf("code = %q, want min_length", code)
	}
}
