package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleFarmer = "farmer"
)

// ResetTokenTTL bounds how long an emailed password-reset link stays usable.
const ResetTokenTTL = 24 * time.Hour

type User struct {
	ID                  uint       `gorm:"primaryKey"`
	Username            string     `gorm:"uniqueIndex;not null"`
	Email               string     `gorm:"uniqueIndex;not null"`
	PasswordHash        string     `gorm:"not null"`
	Role                string     `gorm:"not null;default:farmer"`
	MustChangePassword  bool       `gorm:"not null;default:false"`
	ResetTokenHash      string     `gorm:"not null;default:''"`
	ResetTokenExpiresAt *time.Time `gorm:""`
	LastLoginAt         *time.Time `gorm:""`
	CreatedAt           time.Time  `gorm:"not null"`
}

func (user User) IsAdmin() bool {
	return user.Role == RoleAdmin
}
