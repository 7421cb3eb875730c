package models

import "time"

const (
	RequestStatusPending   = "pending"
	RequestStatusCompleted = "completed"
	RequestStatusProcessed = "processed"
)

const (
	ViabilityVeryViable     = "very_viable"
	ViabilityViableWithCare = "viable_with_care"
)

type RecommendationRequest struct {
	ID              uint       `gorm:"primaryKey"`
	UserID          uint       `gorm:"not null;index"`
	User            User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Crop            string     `gorm:"not null;default:''"`
	Municipality    string     `gorm:"not null;default:''"`
	SowingDate      time.Time  `gorm:"type:date;not null"`
	Quantity        float64    `gorm:"not null"`
	Recommendation  string     `gorm:"type:text;not null;default:''"`
	HarvestDate     *time.Time `gorm:"type:date"`
	Status          string     `gorm:"not null;default:pending;index"`
	Viability       string     `gorm:"not null;default:''"`
	WeatherSnapshot string     `gorm:"type:text;not null;default:''"`
	CreatedAt       time.Time  `gorm:"not null;index"`
	UpdatedAt       time.Time
}

func (RecommendationRequest) TableName() string {
	return "recommendation_requests"
}

func IsKnownRequestStatus(status string) bool {
	switch status {
	case RequestStatusPending, RequestStatusCompleted, RequestStatusProcessed:
		return true
	default:
		return false
	}
}
