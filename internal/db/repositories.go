package db

import "gorm.io/gorm"

type Repositories struct {
	Users    *UserRepository
	Requests *RequestRepository
	Reports  *ReportRepository
}

func NewRepositories(database *gorm.DB) (*Repositories, error) {
	reports, err := NewReportRepository(database)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Users:    NewUserRepository(database),
		Requests: NewRequestRepository(database),
		Reports:  reports,
	}, nil
}
