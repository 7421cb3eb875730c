package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// ReportFilter narrows report queries. Zero values disable a filter; To is
// exclusive.
type ReportFilter struct {
	From         time.Time
	To           time.Time
	Status       string
	Municipality string
	Crop         string
}

type ReportRow struct {
	ID           uint       `db:"id"`
	Username     string     `db:"username"`
	Crop         string     `db:"crop"`
	Municipality string     `db:"municipality"`
	SowingDate   time.Time  `db:"sowing_date"`
	Quantity     float64    `db:"quantity"`
	HarvestDate  *time.Time `db:"harvest_date"`
	Status       string     `db:"status"`
	Viability    string     `db:"viability"`
	CreatedAt    time.Time  `db:"created_at"`
}

type ReportBucket struct {
	Label string `db:"label"`
	Count int64  `db:"total"`
}

// ReportRepository runs the admin reporting queries through sqlx on the same
// connection pool gorm uses.
type ReportRepository struct {
	database *sqlx.DB
	dialect  string
}

func NewReportRepository(database *gorm.DB) (*ReportRepository, error) {
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql handle: %w", err)
	}
	dialect := Dialect(database)
	return &ReportRepository{
		database: sqlx.NewDb(sqlDB, dialect),
		dialect:  dialect,
	}, nil
}

func (repo *ReportRepository) Rows(filter ReportFilter) ([]ReportRow, error) {
	where, args := buildReportWhere(filter)
	query := repo.database.Rebind(`
SELECT r.id, u.username, r.crop, r.municipality, r.sowing_date, r.quantity,
       r.harvest_date, r.status, r.viability, r.created_at
FROM recommendation_requests r
JOIN users u ON u.id = r.user_id` + where + `
ORDER BY r.created_at DESC, r.id DESC`)

	rows := make([]ReportRow, 0)
	if err := repo.database.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("load report rows: %w", err)
	}
	return rows, nil
}

func (repo *ReportRepository) CountByMonth(filter ReportFilter) ([]ReportBucket, error) {
	monthExpr := "substr(r.created_at, 1, 7)"
	if repo.dialect == DialectPostgres {
		monthExpr = "to_char(r.created_at, 'YYYY-MM')"
	}
	return repo.countBy(monthExpr, filter, "label ASC")
}

func (repo *ReportRepository) CountByCrop(filter ReportFilter) ([]ReportBucket, error) {
	return repo.countBy("r.crop", filter, "total DESC, label ASC")
}

func (repo *ReportRepository) CountByMunicipality(filter ReportFilter) ([]ReportBucket, error) {
	return repo.countBy("r.municipality", filter, "total DESC, label ASC")
}

func (repo *ReportRepository) CountByStatus(filter ReportFilter) ([]ReportBucket, error) {
	return repo.countBy("r.status", filter, "label ASC")
}

func (repo *ReportRepository) countBy(expression string, filter ReportFilter, order string) ([]ReportBucket, error) {
	where, args := buildReportWhere(filter)
	if where == "" {
		where = " WHERE "
	} else {
		where += " AND "
	}
	where += expression + " <> ''"

	query := repo.database.Rebind(fmt.Sprintf(`
SELECT %[1]s AS label, COUNT(*) AS total
FROM recommendation_requests r%[2]s
GROUP BY %[1]s
ORDER BY %[3]s`, expression, where, order))

	buckets := make([]ReportBucket, 0)
	if err := repo.database.Select(&buckets, query, args...); err != nil {
		return nil, fmt.Errorf("load report buckets: %w", err)
	}
	return buckets, nil
}

func buildReportWhere(filter ReportFilter) (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)

	if !filter.From.IsZero() {
		clauses = append(clauses, "r.created_at >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "r.created_at < ?")
		args = append(args, filter.To)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		clauses = append(clauses, "r.status = ?")
		args = append(args, status)
	}
	if municipality := strings.TrimSpace(filter.Municipality); municipality != "" {
		clauses = append(clauses, "lower(r.municipality) = ?")
		args = append(args, strings.ToLower(municipality))
	}
	if crop := strings.TrimSpace(filter.Crop); crop != "" {
		clauses = append(clauses, "lower(r.crop) = ?")
		args = append(args, strings.ToLower(crop))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
