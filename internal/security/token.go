package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewResetToken returns a random token for an emailed reset link together with
// the hash that is persisted in its place.
func NewResetToken() (string, string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", "", err
	}
	token := id.String()
	return token, HashToken(token), nil
}

func HashToken(token string) string {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte("agrosoft.reset-token.v1:" + normalized))
	return hex.EncodeToString(sum[:])
}

// IsResetTokenFormat reports whether raw looks like a token minted by
// NewResetToken, so garbage never reaches the database.
func IsResetTokenFormat(raw string) bool {
	_, err := uuid.Parse(strings.TrimSpace(raw))
	return err == nil && len(strings.TrimSpace(raw)) == 36
}

func TokenHashesEqual(expected string, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
