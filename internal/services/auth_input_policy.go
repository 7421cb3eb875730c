package services

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agrosoft/agrosoft/internal/models"
)

const maxUsernameLength = 150

var (
	ErrAuthCredentialsInvalid = errors.New("invalid credentials")
	ErrUsernameInvalid        = errors.New("invalid username")
	ErrUsernameTaken          = errors.New("username already exists")
	ErrEmailInvalid           = errors.New("invalid email")
	ErrEmailTaken             = errors.New("email already exists")
	ErrRoleInvalid            = errors.New("invalid role")
)

var usernameFormatRegex = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return ""
	}
	return email
}

// NormalizeUsername trims the input and returns "" when it breaks the
// username rules: up to 150 letters, digits or @.+-_ characters.
func NormalizeUsername(raw string) string {
	username := strings.TrimSpace(raw)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return ""
	}
	if !usernameFormatRegex.MatchString(username) {
		return ""
	}
	return username
}

func NormalizeCredentialsInput(identifierRaw string, passwordRaw string) (string, string, error) {
	identifier := strings.TrimSpace(identifierRaw)
	password := strings.TrimSpace(passwordRaw)
	if identifier == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return identifier, password, nil
}

func NormalizeRole(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "farmer", "agricultor":
		return models.RoleFarmer, nil
	case "admin", "administrador":
		return models.RoleAdmin, nil
	default:
		return "", ErrRoleInvalid
	}
}
