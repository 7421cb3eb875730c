package services

import (
	"errors"
	"testing"
)

func TestValidatePasswordStrength_RejectsWeakPasswords(t *testing.T) {
	testCases := []struct {
		password string
		username string
		want     error
	}{
		{password: "Corto1", username: "juan", want: ErrPasswordTooShort},
		{password: "12345678", username: "juan", want: ErrPasswordNumeric},
		{password: "JuanPerez", username: "juanperez", want: ErrPasswordSimilarToUsername},
	}

	for _, testCase := range testCases {
		if err := ValidatePasswordStrength(testCase.password, testCase.username); !errors.Is(err, testCase.want) {
			t.Fatalf("ValidatePasswordStrength(%q) = %v, want %v", testCase.password, err, testCase.want)
		}
	}
}

func TestValidatePasswordStrength_AcceptsReasonablePassword(t *testing.T) {
	if err := ValidatePasswordStrength("cosecha de papa", "juan"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestValidatePasswordLengthCountsRunes(t *testing.T) {
	if err := ValidatePasswordLength("ñañañaña"); err != nil {
		t.Fatalf("expected eight runes to be accepted, got %v", err)
	}
	if err := ValidatePasswordLength("ñañaña"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestValidatePasswordConfirmation(t *testing.T) {
	if err := ValidatePasswordConfirmation("Cosecha2024", "Cosecha2024"); err != nil {
		t.Fatalf("expected matching passwords to pass, got %v", err)
	}
	if err := ValidatePasswordConfirmation("Cosecha2024", "cosecha2024"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}
