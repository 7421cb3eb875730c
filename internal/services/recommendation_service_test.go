package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
)

func TestRecommendationServiceSubmitCompletesRequest(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	farmer := createServicesTestUser(t, newServicesTestAuth(repositories), "juan", models.RoleFarmer)
	service := NewRecommendationService(repositories.Requests, fixedWeather("Nubes, 14°C, Humedad: 80%"), time.UTC)

	submitted, err := service.Submit(context.Background(), farmer.ID, RecommendationInput{
		Municipality: "cajica",
		SowingDate:   "2026-07-01",
		Quantity:     "250",
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	stored, err := repositories.Requests.FindByID(submitted.Request.ID)
	if err != nil {
		t.Fatalf("load stored request: %v", err)
	}
	if stored.Status != models.RequestStatusCompleted {
		t.Fatalf("expected completed status, got %q", stored.Status)
	}
	if stored.Municipality != "Cajicá" {
		t.Fatalf("expected canonical municipality, got %q", stored.Municipality)
	}
	if stored.WeatherSnapshot != "Nubes, 14°C, Humedad: 80%" {
		t.Fatalf("unexpected weather snapshot %q", stored.WeatherSnapshot)
	}
	if stored.HarvestDate == nil || stored.HarvestDate.Format("2006-01-02") != "2027-04-27" {
		t.Fatalf("expected yuca harvest 300 days later, got %v", stored.HarvestDate)
	}

	decoded, err := DecodeRecommendation(stored.Recommendation)
	if err != nil {
		t.Fatalf("decode stored recommendation: %v", err)
	}
	if decoded.Mode != RecommendationModeMunicipality || len(decoded.Suggestions) != 3 || decoded.Suggestions[0].Crop != "Yuca" {
		t.Fatalf("unexpected stored recommendation: %+v", decoded)
	}
}

func TestRecommendationServiceSubmitRejectsInvalidInput(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	farmer := createServicesTestUser(t, newServicesTestAuth(repositories), "juan", models.RoleFarmer)
	service := NewRecommendationService(repositories.Requests, nil, time.UTC)

	_, err := service.Submit(context.Background(), farmer.ID, RecommendationInput{
		Crop:       "quinua",
		SowingDate: "2026-07-01",
		Quantity:   "10",
	})
	if !errors.Is(err, ErrCropUnknown) {
		t.Fatalf("expected ErrCropUnknown, got %v", err)
	}

	count, err := repositories.Requests.CountAll()
	if err != nil {
		t.Fatalf("count requests: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no request rows for invalid input, got %d", count)
	}
}

func TestRecommendationServiceRecentForUserLimitsToFive(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	farmer := createServicesTestUser(t, newServicesTestAuth(repositories), "juan", models.RoleFarmer)
	service := NewRecommendationService(repositories.Requests, nil, time.UTC)

	for range 7 {
		if _, err := service.Submit(context.Background(), farmer.ID, RecommendationInput{
			Crop: "papa", SowingDate: "2026-02-01", Quantity: "10",
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	recent, err := service.RecentForUser(farmer.ID)
	if err != nil {
		t.Fatalf("RecentForUser() unexpected error: %v", err)
	}
	if len(recent) != RecentRequestsLimit {
		t.Fatalf("expected %d recent requests, got %d", RecentRequestsLimit, len(recent))
	}

	all, err := service.ListForUser(farmer.ID)
	if err != nil {
		t.Fatalf("ListForUser() unexpected error: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected 7 requests, got %d", len(all))
	}
}

func TestRecommendationServiceLoadForViewerHidesForeignRequests(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	accounts := newServicesTestAuth(repositories)
	owner := createServicesTestUser(t, accounts, "juan", models.RoleFarmer)
	other := createServicesTestUser(t, accounts, "pedro", models.RoleFarmer)
	admin := createServicesTestUser(t, accounts, "admin", models.RoleAdmin)
	service := NewRecommendationService(repositories.Requests, nil, time.UTC)

	submitted, err := service.Submit(context.Background(), owner.ID, RecommendationInput{
		Crop: "tomate", SowingDate: "2026-03-15", Quantity: "40",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, recommendation, err := service.LoadForViewer(&owner, submitted.Request.ID); err != nil || recommendation.Crop != "Tomate" {
		t.Fatalf("owner should see request, got %+v / %v", recommendation, err)
	}
	if _, _, err := service.LoadForViewer(&admin, submitted.Request.ID); err != nil {
		t.Fatalf("admin should see request, got %v", err)
	}
	if _, _, err := service.LoadForViewer(&other, submitted.Request.ID); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound for foreign viewer, got %v", err)
	}
	if _, _, err := service.LoadForViewer(&owner, 9999); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound for missing request, got %v", err)
	}
}

func TestRecommendationServiceMarkProcessed(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	farmer := createServicesTestUser(t, newServicesTestAuth(repositories), "juan", models.RoleFarmer)
	service := NewRecommendationService(repositories.Requests, nil, time.UTC)

	submitted, err := service.Submit(context.Background(), farmer.ID, RecommendationInput{
		Crop: "papa", SowingDate: "2026-01-10", Quantity: "5",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := service.MarkProcessed(submitted.Request.ID); err != nil {
		t.Fatalf("MarkProcessed() unexpected error: %v", err)
	}
	if err := service.MarkProcessed(submitted.Request.ID); !errors.Is(err, ErrRequestNotCompleted) {
		t.Fatalf("expected ErrRequestNotCompleted on second call, got %v", err)
	}
	if err := service.MarkProcessed(424242); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRecommendationServiceComputeDoesNotPersist(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	service := NewRecommendationService(repositories.Requests, fixedWeather("Soleado"), time.UTC)

	recommendation, weather, err := service.Compute(context.Background(), RecommendationInput{
		Crop: "maiz", SowingDate: "2026-04-01", QuantityOptional: true,
	})
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}
	if weather != "Soleado" || recommendation.Analysis == nil || !recommendation.Analysis.Optimal {
		t.Fatalf("unexpected compute result: %+v / %q", recommendation, weather)
	}

	count, err := repositories.Requests.CountAll()
	if err != nil {
		t.Fatalf("count requests: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected Compute to leave no rows, got %d", count)
	}
}
