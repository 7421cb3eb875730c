package services

import (
	"time"

	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/models"
)

const (
	dashboardRecentWindowDays = 30
	dashboardLatestLimit      = 10
	dashboardTopLimit         = 5
)

type StatsUserReader interface {
	CountUsers() (int64, error)
	CountByRole(role string) (int64, error)
}

type StatsRequestReader interface {
	CountAll() (int64, error)
	CountByStatus(status string) (int64, error)
	CountSince(since time.Time) (int64, error)
	ListRecent(limit int) ([]models.RecommendationRequest, error)
}

type StatsBucketReader interface {
	CountByCrop(filter db.ReportFilter) ([]db.ReportBucket, error)
	CountByMunicipality(filter db.ReportFilter) ([]db.ReportBucket, error)
}

type DashboardStats struct {
	TotalUsers        int64
	Farmers           int64
	Admins            int64
	TotalRequests     int64
	Pending           int64
	Completed         int64
	Processed         int64
	LastThirtyDays    int64
	TopCrops          []db.ReportBucket
	TopMunicipalities []db.ReportBucket
	Latest            []models.RecommendationRequest
}

type StatsService struct {
	users    StatsUserReader
	requests StatsRequestReader
	buckets  StatsBucketReader
}

func NewStatsService(users StatsUserReader, requests StatsRequestReader, buckets StatsBucketReader) *StatsService {
	return &StatsService{
		users:    users,
		requests: requests,
		buckets:  buckets,
	}
}

func (service *StatsService) BuildDashboard(now time.Time) (DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)

	if stats.TotalUsers, err = service.users.CountUsers(); err != nil {
		return DashboardStats{}, err
	}
	if stats.Farmers, err = service.users.CountByRole(models.RoleFarmer); err != nil {
		return DashboardStats{}, err
	}
	if stats.Admins, err = service.users.CountByRole(models.RoleAdmin); err != nil {
		return DashboardStats{}, err
	}
	if stats.TotalRequests, err = service.requests.CountAll(); err != nil {
		return DashboardStats{}, err
	}
	if stats.Pending, err = service.requests.CountByStatus(models.RequestStatusPending); err != nil {
		return DashboardStats{}, err
	}
	if stats.Completed, err = service.requests.CountByStatus(models.RequestStatusCompleted); err != nil {
		return DashboardStats{}, err
	}
	if stats.Processed, err = service.requests.CountByStatus(models.RequestStatusProcessed); err != nil {
		return DashboardStats{}, err
	}
	if stats.LastThirtyDays, err = service.requests.CountSince(now.AddDate(0, 0, -dashboardRecentWindowDays)); err != nil {
		return DashboardStats{}, err
	}

	crops, err := service.buckets.CountByCrop(db.ReportFilter{})
	if err != nil {
		return DashboardStats{}, err
	}
	stats.TopCrops = trimBuckets(crops, dashboardTopLimit)

	municipalities, err := service.buckets.CountByMunicipality(db.ReportFilter{})
	if err != nil {
		return DashboardStats{}, err
	}
	stats.TopMunicipalities = trimBuckets(municipalities, dashboardTopLimit)

	if stats.Latest, err = service.requests.ListRecent(dashboardLatestLimit); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

func trimBuckets(buckets []db.ReportBucket, limit int) []db.ReportBucket {
	if limit <= 0 || len(buckets) <= limit {
		return buckets
	}
	return buckets[:limit]
}
