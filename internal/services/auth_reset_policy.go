package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	passwordResetPath         = "/reset-password/"
	passwordResetEmailSubject = "Recuperación de Contraseña - AgroSoft"
)

var (
	ErrPasswordResetTokenMissing = errors.New("missing reset token")
	ErrPasswordResetTokenInvalid = errors.New("invalid reset token")
	ErrPasswordResetTokenExpired = errors.New("expired reset token")
)

func BuildPasswordResetURL(baseURL string, token string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + passwordResetPath + token
}

// IsResetTokenExpired treats a missing expiry as expired.
func IsResetTokenExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return !now.Before(*expiresAt)
}

func buildPasswordResetEmailBody(username string, resetURL string) string {
	return fmt.Sprintf(
		"Hola %s,\n\nPara restablecer tu contraseña, visita: %s\n\nEste enlace expira en 24 horas.",
		username,
		resetURL,
	)
}
