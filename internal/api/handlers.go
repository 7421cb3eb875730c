package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/integrations/mail"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, options HandlerOptions) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if strings.TrimSpace(options.SecretKey) == "" {
		return nil, errors.New("secret key is required")
	}

	location := options.Location
	if location == nil {
		location = time.Local
	}
	mailer := options.Mailer
	if mailer == nil {
		mailer = &mail.LogMailer{}
	}

	templates, err := parsePageTemplates(options.TemplateDir, newTemplateFuncMap(), pageTemplates)
	if err != nil {
		return nil, err
	}

	cookieCodec, err := newSecureCookieCodec([]byte(options.SecretKey))
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		db:              database,
		secretKey:       []byte(options.SecretKey),
		cookieCodec:     cookieCodec,
		location:        location,
		cookieSecure:    options.CookieSecure,
		baseURL:         strings.TrimSpace(options.BaseURL),
		corsOrigins:     options.CORSAllowedOrigins,
		i18n:            options.I18n,
		templates:       templates,
		mailer:          mailer,
		weather:         options.Weather,
		loginLimiter:    newAttemptLimiter(loginAttemptsLimit, loginAttemptsWindow),
		recoveryLimiter: newAttemptLimiter(recoveryAttemptsLimit, recoveryAttemptsWindow),
	}
	if _, err := handler.withDependencies(database); err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}
	return handler, nil
}
