package services

import (
	"errors"
	"fmt"

	"github.com/agrosoft/agrosoft/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCannotDeleteSelf     = errors.New("cannot delete own account")
	ErrCannotChangeOwnRole  = errors.New("cannot change own role")
	ErrAdminActionForbidden = errors.New("admin role required")
)

type AdminUserRepository interface {
	List() ([]models.User, error)
	FindByID(userID uint) (models.User, error)
	UpdateRole(userID uint, role string) error
	DeleteWithRequests(userID uint) error
}

type AccountCreator interface {
	CreateAccount(input AccountInput) (models.User, error)
}

type UserAdminService struct {
	users    AdminUserRepository
	accounts AccountCreator
}

func NewUserAdminService(users AdminUserRepository, accounts AccountCreator) *UserAdminService {
	return &UserAdminService{users: users, accounts: accounts}
}

func (service *UserAdminService) ListUsers() ([]models.User, error) {
	return service.users.List()
}

func (service *UserAdminService) CreateUser(actor *models.User, input AccountInput) (models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return models.User{}, err
	}
	return service.accounts.CreateAccount(input)
}

func (service *UserAdminService) ChangeRole(actor *models.User, targetID uint, roleRaw string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	role, err := NormalizeRole(roleRaw)
	if err != nil {
		return err
	}
	if actor.ID == targetID {
		return ErrCannotChangeOwnRole
	}
	if _, err := service.findUser(targetID); err != nil {
		return err
	}
	if err := service.users.UpdateRole(targetID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// DeleteUser removes the account and, by ownership, its requests. An
// administrator can never delete their own account.
func (service *UserAdminService) DeleteUser(actor *models.User, targetID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == targetID {
		return ErrCannotDeleteSelf
	}
	if _, err := service.findUser(targetID); err != nil {
		return err
	}
	if err := service.users.DeleteWithRequests(targetID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (service *UserAdminService) findUser(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func requireAdmin(actor *models.User) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrAdminActionForbidden
	}
	return nil
}
