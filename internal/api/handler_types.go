package api

import (
	"html/template"
	"time"

	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/i18n"
	"github.com/agrosoft/agrosoft/internal/integrations/mail"
	"github.com/agrosoft/agrosoft/internal/services"
	"gorm.io/gorm"
)

type Handler struct {
	db              *gorm.DB
	secretKey       []byte
	cookieCodec     *secureCookieCodec
	location        *time.Location
	cookieSecure    bool
	baseURL         string
	corsOrigins     []string
	i18n            *i18n.Manager
	templates       map[string]*template.Template
	mailer          mail.Mailer
	weather         services.WeatherProvider
	loginLimiter    *attemptLimiter
	recoveryLimiter *attemptLimiter

	repositories      *db.Repositories
	authService       *services.AuthService
	recommendationSvc *services.RecommendationService
	userAdminService  *services.UserAdminService
	statsService      *services.StatsService
	reportService     *services.ReportService
}

// HandlerOptions carries everything NewHandler needs besides the database.
type HandlerOptions struct {
	SecretKey          string
	TemplateDir        string
	Location           *time.Location
	I18n               *i18n.Manager
	CookieSecure       bool
	BaseURL            string
	CORSAllowedOrigins []string
	Mailer             mail.Mailer
	Weather            services.WeatherProvider
}

type FlashPayload struct {
	AuthError     string `json:"auth_error,omitempty"`
	FormError     string `json:"form_error,omitempty"`
	Success       string `json:"success,omitempty"`
	Identifier    string `json:"identifier,omitempty"`
	RegisterEmail string `json:"register_email,omitempty"`
	RegisterUser  string `json:"register_user,omitempty"`
}

const (
	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour
)

const (
	loginAttemptsLimit     = 8
	loginAttemptsWindow    = 15 * time.Minute
	recoveryAttemptsLimit  = 8
	recoveryAttemptsWindow = 15 * time.Minute
)

type credentialsInput struct {
	Identifier string `json:"username" form:"username"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"remember_me" form:"remember_me"`
	Next       string `json:"next" form:"next"`
}

type registerInput struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type forgotPasswordInput struct {
	Identifier string `json:"identifier" form:"identifier"`
}

type resetPasswordInput struct {
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type recommendationFormInput struct {
	Mode         string `json:"mode" form:"mode"`
	Crop         string `json:"crop" form:"crop"`
	Municipality string `json:"municipality" form:"municipality"`
	SowingDate   string `json:"sowing_date" form:"sowing_date"`
	Quantity     string `json:"quantity" form:"quantity"`
}

// recommendationAPIInput accepts quantity as a JSON number or string.
type recommendationAPIInput struct {
	Crop         string `json:"crop"`
	Municipality string `json:"municipality"`
	SowingDate   string `json:"sowing_date"`
	Quantity     any    `json:"quantity"`
}

type adminUserInput struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Role            string `json:"role" form:"role"`
}
