package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"gorm.io/gorm"
)

const RecentRequestsLimit = 5

var (
	ErrRequestNotFound     = errors.New("recommendation request not found")
	ErrRequestNotCompleted = errors.New("recommendation request is not completed")
)

type RecommendationRequestRepository interface {
	Create(request *models.RecommendationRequest) error
	Complete(requestID uint, recommendation string, harvestDate *time.Time, viability string, weather string) error
	FindByID(requestID uint) (models.RecommendationRequest, error)
	ListByUser(userID uint, limit int) ([]models.RecommendationRequest, error)
	MarkProcessed(requestID uint) error
}

// WeatherProvider returns display text for current conditions. It never
// fails; errors are folded into the text.
type WeatherProvider interface {
	Snapshot(ctx context.Context) string
}

type RecommendationService struct {
	requests RecommendationRequestRepository
	weather  WeatherProvider
	location *time.Location
}

type SubmittedRecommendation struct {
	Request        models.RecommendationRequest
	Recommendation Recommendation
	Weather        string
}

func NewRecommendationService(requests RecommendationRequestRepository, weather WeatherProvider, location *time.Location) *RecommendationService {
	if location == nil {
		location = time.UTC
	}
	return &RecommendationService{
		requests: requests,
		weather:  weather,
		location: location,
	}
}

func (service *RecommendationService) Location() *time.Location {
	return service.location
}

func (service *RecommendationService) CurrentWeather(ctx context.Context) string {
	if service.weather == nil {
		return ""
	}
	return service.weather.Snapshot(ctx)
}

// Compute validates input and builds a recommendation without persisting it.
func (service *RecommendationService) Compute(ctx context.Context, input RecommendationInput) (Recommendation, string, error) {
	validated, err := ValidateRecommendationInput(input, service.location)
	if err != nil {
		return Recommendation{}, "", err
	}
	return buildRecommendation(validated), service.CurrentWeather(ctx), nil
}

// Submit stores a pending request, computes its recommendation and completes
// it in a single update.
func (service *RecommendationService) Submit(ctx context.Context, userID uint, input RecommendationInput) (SubmittedRecommendation, error) {
	validated, err := ValidateRecommendationInput(input, service.location)
	if err != nil {
		return SubmittedRecommendation{}, err
	}

	request := models.RecommendationRequest{
		UserID:       userID,
		Crop:         validated.CropSlug,
		Municipality: validated.Municipality,
		SowingDate:   validated.SowingDate,
		Quantity:     validated.Quantity,
		Status:       models.RequestStatusPending,
	}
	if err := service.requests.Create(&request); err != nil {
		return SubmittedRecommendation{}, fmt.Errorf("create recommendation request: %w", err)
	}

	recommendation := buildRecommendation(validated)
	weather := service.CurrentWeather(ctx)

	encoded, err := json.Marshal(recommendation)
	if err != nil {
		return SubmittedRecommendation{}, fmt.Errorf("encode recommendation: %w", err)
	}

	harvestDate := recommendation.HarvestDate
	if err := service.requests.Complete(request.ID, string(encoded), &harvestDate, recommendation.Viability, weather); err != nil {
		return SubmittedRecommendation{}, fmt.Errorf("complete recommendation request: %w", err)
	}

	request.Recommendation = string(encoded)
	request.HarvestDate = &harvestDate
	request.Viability = recommendation.Viability
	request.WeatherSnapshot = weather
	request.Status = models.RequestStatusCompleted

	return SubmittedRecommendation{
		Request:        request,
		Recommendation: recommendation,
		Weather:        weather,
	}, nil
}

func (service *RecommendationService) RecentForUser(userID uint) ([]models.RecommendationRequest, error) {
	return service.requests.ListByUser(userID, RecentRequestsLimit)
}

func (service *RecommendationService) ListForUser(userID uint) ([]models.RecommendationRequest, error) {
	return service.requests.ListByUser(userID, 0)
}

// LoadForViewer hides requests the viewer does not own unless the viewer is
// an administrator.
func (service *RecommendationService) LoadForViewer(viewer *models.User, requestID uint) (models.RecommendationRequest, Recommendation, error) {
	if viewer == nil || requestID == 0 {
		return models.RecommendationRequest{}, Recommendation{}, ErrRequestNotFound
	}

	request, err := service.requests.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RecommendationRequest{}, Recommendation{}, ErrRequestNotFound
		}
		return models.RecommendationRequest{}, Recommendation{}, err
	}
	if request.UserID != viewer.ID && !viewer.IsAdmin() {
		return models.RecommendationRequest{}, Recommendation{}, ErrRequestNotFound
	}

	recommendation, err := DecodeRecommendation(request.Recommendation)
	if err != nil {
		return models.RecommendationRequest{}, Recommendation{}, err
	}
	return request, recommendation, nil
}

func (service *RecommendationService) MarkProcessed(requestID uint) error {
	request, err := service.requests.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	if request.Status != models.RequestStatusCompleted {
		return ErrRequestNotCompleted
	}
	if err := service.requests.MarkProcessed(requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotCompleted
		}
		return err
	}
	return nil
}

// DecodeRecommendation tolerates empty text from pending rows.
func DecodeRecommendation(raw string) (Recommendation, error) {
	if strings.TrimSpace(raw) == "" {
		return Recommendation{}, nil
	}
	var recommendation Recommendation
	if err := json.Unmarshal([]byte(raw), &recommendation); err != nil {
		return Recommendation{}, fmt.Errorf("decode recommendation: %w", err)
	}
	return recommendation, nil
}

func buildRecommendation(validated ValidatedRecommendationInput) Recommendation {
	if validated.Mode == RecommendationModeCrop {
		return RecommendForCrop(validated.CropSlug, validated.SowingDate, validated.Quantity)
	}
	return RecommendForMunicipality(validated.Municipality, validated.SowingDate, validated.Quantity)
}
