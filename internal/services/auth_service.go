package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/integrations/mail"
	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/agrosoft/agrosoft/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type AuthUserRepository interface {
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	FindByID(userID uint) (models.User, error)
	FindByUsername(username string) (models.User, error)
	FindByEmail(email string) (models.User, error)
	FindByResetTokenHash(tokenHash string) (models.User, error)
	Create(user *models.User) error
	UpdateLastLogin(userID uint, at time.Time) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	SetResetToken(userID uint, tokenHash string, expiresAt time.Time) error
	CompletePasswordReset(userID uint, tokenHash string, passwordHash string, now time.Time) error
}

type AuthService struct {
	users   AuthUserRepository
	mailer  mail.Mailer
	baseURL string
	now     func() time.Time
}

type AccountInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

func NewAuthService(users AuthUserRepository, mailer mail.Mailer, baseURL string) *AuthService {
	return &AuthService{
		users:   users,
		mailer:  mailer,
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}

// Register creates a farmer account; self-registration never grants admin.
func (service *AuthService) Register(input AccountInput) (models.User, error) {
	input.Role = models.RoleFarmer
	return service.CreateAccount(input)
}

// CreateAccount validates and stores a new account with the requested role.
func (service *AuthService) CreateAccount(input AccountInput) (models.User, error) {
	username := NormalizeUsername(input.Username)
	if username == "" {
		return models.User{}, ErrUsernameInvalid
	}
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		return models.User{}, ErrEmailInvalid
	}
	role, err := NormalizeRole(input.Role)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordConfirmation(input.Password, input.ConfirmPassword); err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(input.Password, username); err != nil {
		return models.User{}, err
	}

	usernameTaken, err := service.users.ExistsByUsername(username)
	if err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if usernameTaken {
		return models.User{}, ErrUsernameTaken
	}
	emailTaken, err := service.users.ExistsByEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return models.User{}, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		CreatedAt:    service.now(),
	}
	if err := service.users.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, service.duplicateAccountError(username)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// duplicateAccountError names the field a concurrent registration claimed
// between the availability checks and the insert.
func (service *AuthService) duplicateAccountError(username string) error {
	if taken, err := service.users.ExistsByUsername(username); err == nil && taken {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// Authenticate accepts a username or an email address. Every failure maps to
// ErrAuthCredentialsInvalid.
func (service *AuthService) Authenticate(identifierRaw string, passwordRaw string) (models.User, error) {
	identifier, password, err := NormalizeCredentialsInput(identifierRaw, passwordRaw)
	if err != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	user, err := service.findByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	now := service.now()
	if err := service.users.UpdateLastLogin(user.ID, now); err != nil {
		return models.User{}, fmt.Errorf("record login: %w", err)
	}
	user.LastLoginAt = &now
	return user, nil
}

// RequestPasswordReset issues a single-use token valid for 24 hours and mails
// the reset link to the account owner.
func (service *AuthService) RequestPasswordReset(ctx context.Context, identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return ErrUserNotFound
	}
	user, err := service.findByIdentifier(identifier)
	if err != nil {
		return err
	}

	token, tokenHash, err := security.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := service.users.SetResetToken(user.ID, tokenHash, service.now().Add(models.ResetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	message := mail.Message{
		To:      []string{user.Email},
		Subject: passwordResetEmailSubject,
		Body:    buildPasswordResetEmailBody(user.Username, BuildPasswordResetURL(service.baseURL, token)),
	}
	if err := service.mailer.Send(ctx, message); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResolveResetToken returns the account a live token belongs to.
func (service *AuthService) ResolveResetToken(token string) (models.User, error) {
	if strings.TrimSpace(token) == "" {
		return models.User{}, ErrPasswordResetTokenMissing
	}
	if !security.IsResetTokenFormat(token) {
		return models.User{}, ErrPasswordResetTokenInvalid
	}

	tokenHash := security.HashToken(token)
	user, err := service.users.FindByResetTokenHash(tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrPasswordResetTokenInvalid
		}
		return models.User{}, err
	}
	if !security.TokenHashesEqual(user.ResetTokenHash, tokenHash) {
		return models.User{}, ErrPasswordResetTokenInvalid
	}
	if IsResetTokenExpired(user.ResetTokenExpiresAt, service.now()) {
		return models.User{}, ErrPasswordResetTokenExpired
	}
	return user, nil
}

// ResetPassword consumes the token; a second use fails with
// ErrPasswordResetTokenInvalid.
func (service *AuthService) ResetPassword(token string, password string, confirm string) (models.User, error) {
	user, err := service.ResolveResetToken(token)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordConfirmation(password, confirm); err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordLength(password); err != nil {
		return models.User{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.CompletePasswordReset(user.ID, user.ResetTokenHash, string(passwordHash), service.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrPasswordResetTokenInvalid
		}
		return models.User{}, fmt.Errorf("store password: %w", err)
	}
	user.PasswordHash = string(passwordHash)
	user.MustChangePassword = false
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	return user, nil
}

func (service *AuthService) ChangePassword(user *models.User, current string, next string, confirm string) error {
	if user == nil {
		return ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrAuthCredentialsInvalid
	}
	if err := ValidatePasswordConfirmation(next, confirm); err != nil {
		return err
	}
	if err := ValidatePasswordStrength(next, user.Username); err != nil {
		return err
	}
	if current == next {
		return ErrPasswordUnchanged
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(user.ID, string(passwordHash), false); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	user.PasswordHash = string(passwordHash)
	user.MustChangePassword = false
	return nil
}

func (service *AuthService) findByIdentifier(identifier string) (models.User, error) {
	user, err := service.users.FindByUsername(identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	if !strings.Contains(identifier, "@") {
		return models.User{}, ErrUserNotFound
	}
	user, err = service.users.FindByEmail(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
