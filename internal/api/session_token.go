package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenIssuer = "agrosoft"

var errMissingSession = errors.New("missing session cookie")

type authClaims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (handler *Handler) buildToken(user *models.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultAuthTokenTTL
	}
	now := time.Now()

	claims := authClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionTokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
}

func (handler *Handler) parseSessionToken(raw string) (*authClaims, error) {
	claims := &authClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return handler.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionTokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 || claims.Subject != strconv.FormatUint(uint64(claims.UserID), 10) {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// authenticateRequest loads the user on every request so role changes and
// deletions take effect immediately.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	raw := strings.TrimSpace(c.Cookies(authCookieName))
	if raw == "" {
		return nil, errMissingSession
	}

	claims, err := handler.parseSessionToken(raw)
	if err != nil {
		return nil, err
	}

	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// optionalAuthenticatedUser is used by public pages that adapt to a signed-in
// visitor.
func (handler *Handler) optionalAuthenticatedUser(c *fiber.Ctx) *models.User {
	if user, ok := currentUser(c); ok {
		return user
	}
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return nil
	}
	return user
}
