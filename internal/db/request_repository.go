package db

import (
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"gorm.io/gorm"
)

type RequestRepository struct {
	database *gorm.DB
}

func NewRequestRepository(database *gorm.DB) *RequestRepository {
	return &RequestRepository{database: database}
}

func (repo *RequestRepository) Create(request *models.RecommendationRequest) error {
	return repo.database.Omit("User").Create(request).Error
}

// Complete persists the computed recommendation and flips the status in the
// same statement, so a completed row always carries its recommendation.
func (repo *RequestRepository) Complete(requestID uint, recommendation string, harvestDate *time.Time, viability string, weather string) error {
	result := repo.database.Model(&models.RecommendationRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
		Updates(map[string]any{
			"recommendation":   recommendation,
			"harvest_date":     harvestDate,
			"viability":        viability,
			"weather_snapshot": weather,
			"status":           models.RequestStatusCompleted,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *RequestRepository) MarkProcessed(requestID uint) error {
	result := repo.database.Model(&models.RecommendationRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestStatusCompleted).
		Update("status", models.RequestStatusProcessed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *RequestRepository) FindByID(requestID uint) (models.RecommendationRequest, error) {
	var request models.RecommendationRequest
	if err := repo.database.Preload("User").First(&request, requestID).Error; err != nil {
		return models.RecommendationRequest{}, err
	}
	return request, nil
}

func (repo *RequestRepository) ListByUser(userID uint, limit int) ([]models.RecommendationRequest, error) {
	requests := make([]models.RecommendationRequest, 0)
	query := repo.database.Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (repo *RequestRepository) ListRecent(limit int) ([]models.RecommendationRequest, error) {
	requests := make([]models.RecommendationRequest, 0)
	if err := repo.database.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (repo *RequestRepository) CountAll() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.RecommendationRequest{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *RequestRepository) CountByStatus(status string) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.RecommendationRequest{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *RequestRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.RecommendationRequest{}).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
