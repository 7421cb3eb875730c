package api

import (
	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) (*Handler, error) {
	repositories, err := db.NewRepositories(database)
	if err != nil {
		return nil, err
	}

	handler.repositories = repositories
	handler.authService = services.NewAuthService(repositories.Users, handler.mailer, handler.baseURL)
	handler.recommendationSvc = services.NewRecommendationService(repositories.Requests, handler.weather, handler.location)
	handler.userAdminService = services.NewUserAdminService(repositories.Users, handler.authService)
	handler.statsService = services.NewStatsService(repositories.Users, repositories.Requests, repositories.Reports)
	handler.reportService = services.NewReportService(repositories.Reports, handler.location)
	return handler, nil
}
