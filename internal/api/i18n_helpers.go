package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/i18n"
	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	errTooManyLoginAttempts    = "too many login attempts"
	errTooManyRecoveryAttempts = "too many recovery attempts"
	errInvalidInput            = "invalid input"
)

var errorMessageKeys = map[string]string{
	services.ErrAuthCredentialsInvalid.Error():    "auth.error.invalid_credentials",
	services.ErrUsernameInvalid.Error():           "auth.error.invalid_username",
	services.ErrUsernameTaken.Error():             "auth.error.username_taken",
	services.ErrEmailInvalid.Error():              "auth.error.invalid_email",
	services.ErrEmailTaken.Error():                "auth.error.email_taken",
	services.ErrRoleInvalid.Error():               "admin.error.invalid_role",
	services.ErrPasswordTooShort.Error():          "auth.error.password_too_short",
	services.ErrPasswordNumeric.Error():           "auth.error.password_numeric",
	services.ErrPasswordSimilarToUsername.Error(): "auth.error.password_similar",
	services.ErrPasswordMismatch.Error():          "auth.error.password_mismatch",
	services.ErrPasswordUnchanged.Error():         "auth.error.password_unchanged",
	services.ErrPasswordResetTokenMissing.Error(): "auth.error.invalid_reset_token",
	services.ErrPasswordResetTokenInvalid.Error(): "auth.error.invalid_reset_token",
	services.ErrPasswordResetTokenExpired.Error(): "auth.error.expired_reset_token",
	services.ErrUserNotFound.Error():              "auth.error.user_not_found",
	services.ErrRecommendationModeInvalid.Error(): "recommendation.error.mode",
	services.ErrCropRequired.Error():              "recommendation.error.crop_required",
	services.ErrCropUnknown.Error():               "recommendation.error.crop_unknown",
	services.ErrMunicipalityRequired.Error():      "recommendation.error.municipality_required",
	services.ErrMunicipalityTooLong.Error():       "recommendation.error.municipality_too_long",
	services.ErrSowingDateInvalid.Error():         "recommendation.error.sowing_date",
	services.ErrQuantityRequired.Error():          "recommendation.error.quantity_required",
	services.ErrQuantityInvalid.Error():           "recommendation.error.quantity_invalid",
	services.ErrRequestNotFound.Error():           "recommendation.error.not_found",
	services.ErrRequestNotCompleted.Error():       "admin.error.request_not_completed",
	services.ErrCannotDeleteSelf.Error():          "admin.error.delete_self",
	services.ErrCannotChangeOwnRole.Error():       "admin.error.own_role",
	services.ErrAdminActionForbidden.Error():      "error.forbidden.body",
	services.ErrReportDateInvalid.Error():         "report.error.date",
	services.ErrReportRangeInvalid.Error():        "report.error.range",
	services.ErrReportStatusFilter.Error():        "report.error.status",
	errTooManyLoginAttempts:                       "auth.error.too_many_login_attempts",
	errTooManyRecoveryAttempts:                    "auth.error.too_many_recovery_attempts",
	errInvalidInput:                               "error.invalid_input",
}

var monthLongNames = map[string][]string{
	i18n.LangES: {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	i18n.LangEN: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

func translateMessage(messages map[string]string, key string) string {
	if key == "" {
		return ""
	}
	if value, ok := messages[key]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	return key
}

func errorTranslationKey(message string) string {
	return errorMessageKeys[strings.ToLower(strings.TrimSpace(message))]
}

// localizedError renders a service error in the visitor's language, falling
// back to the raw message for errors without a catalog entry.
func localizedError(messages map[string]string, message string) string {
	key := errorTranslationKey(message)
	if key == "" {
		return message
	}
	return translateMessage(messages, key)
}

// publicErrorMessage keeps internal failures out of flashes.
func publicErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errorTranslationKey(err.Error()) != "" {
		return err.Error()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Message
	}
	return "internal error"
}

func roleTranslationKey(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleAdmin:
		return "role.admin"
	case models.RoleFarmer:
		return "role.farmer"
	default:
		return role
	}
}

func statusTranslationKey(status string) string {
	if models.IsKnownRequestStatus(status) {
		return "status." + status
	}
	return status
}

func viabilityTranslationKey(viability string) string {
	switch viability {
	case models.ViabilityVeryViable, models.ViabilityViableWithCare:
		return "viability." + viability
	default:
		return viability
	}
}

func riskTranslationKey(risk string) string {
	switch risk {
	case services.RiskLow, services.RiskModerate:
		return "risk." + risk
	default:
		return risk
	}
}

func seasonTranslationKey(season services.Season) string {
	if season == "" {
		return ""
	}
	return "season." + string(season)
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return strings.TrimSpace(language)
}

func currentMessages(c *fiber.Ctx) map[string]string {
	messages, ok := c.Locals(contextMessagesKey).(map[string]string)
	if !ok || messages == nil {
		return map[string]string{}
	}
	return messages
}

func (handler *Handler) withTemplateDefaults(c *fiber.Ctx, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}

	messages := currentMessages(c)
	if _, ok := data["Messages"]; !ok {
		data["Messages"] = messages
	}
	if _, ok := data["Lang"]; !ok {
		language := currentLanguage(c)
		if language == "" {
			language = handler.i18n.DefaultLanguage()
		}
		data["Lang"] = language
	}
	if _, ok := data["Languages"]; !ok {
		data["Languages"] = handler.i18n.SupportedLanguages()
	}
	if _, ok := data["CurrentPath"]; !ok {
		data["CurrentPath"] = currentPathWithQuery(c)
	}
	if _, ok := data["CSRFToken"]; !ok {
		data["CSRFToken"] = csrfToken(c)
	}
	if _, ok := data["CurrentUser"]; !ok {
		if user, found := currentUser(c); found {
			data["CurrentUser"] = user
		}
	}
	if _, ok := data["NoDataLabel"]; !ok {
		noData := translateMessage(messages, "common.not_available")
		if noData == "common.not_available" {
			noData = "-"
		}
		data["NoDataLabel"] = noData
	}
	return data
}

// localizedDate renders "27 de abril de 2027" or "April 27, 2027".
func localizedDate(language string, value time.Time) string {
	if value.IsZero() {
		return ""
	}
	names, ok := monthLongNames[strings.ToLower(language)]
	if !ok {
		return value.Format("2006-01-02")
	}
	month := names[int(value.Month())-1]
	if language == i18n.LangEN {
		return fmt.Sprintf("%s %d, %d", month, value.Day(), value.Year())
	}
	return fmt.Sprintf("%d de %s de %d", value.Day(), month, value.Year())
}
