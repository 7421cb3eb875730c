package services

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort          = errors.New("password too short")
	ErrPasswordNumeric           = errors.New("password is entirely numeric")
	ErrPasswordSimilarToUsername = errors.New("password too similar to username")
	ErrPasswordMismatch          = errors.New("passwords do not match")
	ErrPasswordUnchanged         = errors.New("new password matches the current one")
)

// ValidatePasswordStrength applies the account password rules used at
// registration, admin creation and voluntary password changes.
func ValidatePasswordStrength(password string, username string) error {
	if err := ValidatePasswordLength(password); err != nil {
		return err
	}

	allDigits := true
	for _, char := range password {
		if !unicode.IsDigit(char) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return ErrPasswordNumeric
	}

	normalizedUsername := strings.ToLower(strings.TrimSpace(username))
	if normalizedUsername != "" && strings.ToLower(password) == normalizedUsername {
		return ErrPasswordSimilarToUsername
	}
	return nil
}

func ValidatePasswordLength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func ValidatePasswordConfirmation(password string, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
