package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) CountUsers() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) CountByRole(role string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	if err := repo.database.
		Where("lower(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByResetTokenHash(tokenHash string) (models.User, error) {
	var user models.User
	if err := repo.database.
		Where("reset_token_hash = ? AND reset_token_hash <> ''", tokenHash).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByUsername(username string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ExistsByEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) List() ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.Order("lower(username) ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create reports a clash with the case-insensitive username or email index
// as gorm.ErrDuplicatedKey, whichever driver raised it.
func (repo *UserRepository) Create(user *models.User) error {
	err := repo.database.Create(user).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}

func (repo *UserRepository) Save(user *models.User) error {
	return repo.database.Save(user).Error
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	}).Error
}

func (repo *UserRepository) UpdateRole(userID uint, role string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("role", role).Error
}

func (repo *UserRepository) UpdateLastLogin(userID uint, at time.Time) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

func (repo *UserRepository) SetResetToken(userID uint, tokenHash string, expiresAt time.Time) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"reset_token_hash":       tokenHash,
		"reset_token_expires_at": expiresAt,
	}).Error
}

// CompletePasswordReset stores the new hash and burns the reset token in one
// write. The update only matches while tokenHash is still the user's live
// token, so of two submissions racing with one token only the first wins; the
// other gets gorm.ErrRecordNotFound.
func (repo *UserRepository) CompletePasswordReset(userID uint, tokenHash string, passwordHash string, now time.Time) error {
	if tokenHash == "" {
		return gorm.ErrRecordNotFound
	}
	result := repo.database.Model(&models.User{}).
		Where("id = ? AND reset_token_hash = ? AND reset_token_expires_at > ?", userID, tokenHash, now).
		Updates(map[string]any{
			"password_hash":          passwordHash,
			"must_change_password":   false,
			"reset_token_hash":       "",
			"reset_token_expires_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AssignTemporaryPassword stores an operator-issued password, forces a change
// on next login and revokes any pending reset link.
func (repo *UserRepository) AssignTemporaryPassword(userID uint, passwordHash string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash":          passwordHash,
		"must_change_password":   true,
		"reset_token_hash":       "",
		"reset_token_expires_at": nil,
	}).Error
}

// DeleteWithRequests removes the account and every request it owns. The
// foreign key cascades too; the explicit delete keeps databases opened
// without foreign_keys enforcement consistent.
func (repo *UserRepository) DeleteWithRequests(userID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RecommendationRequest{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
