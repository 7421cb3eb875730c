package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/agrosoft/agrosoft/internal/db"
	"github.com/agrosoft/agrosoft/internal/models"
)

const reportDateLayout = "2006-01-02"

var (
	ErrReportDateInvalid  = errors.New("invalid report date")
	ErrReportRangeInvalid = errors.New("report start date is after end date")
	ErrReportStatusFilter = errors.New("invalid report status")
)

var ReportCSVHeaders = []string{
	"ID",
	"Usuario",
	"Cultivo",
	"Municipio",
	"Fecha de siembra",
	"Cantidad (kg)",
	"Fecha de cosecha",
	"Estado",
	"Viabilidad",
	"Creada",
}

type ReportReader interface {
	Rows(filter db.ReportFilter) ([]db.ReportRow, error)
	CountByMonth(filter db.ReportFilter) ([]db.ReportBucket, error)
	CountByCrop(filter db.ReportFilter) ([]db.ReportBucket, error)
	CountByMunicipality(filter db.ReportFilter) ([]db.ReportBucket, error)
	CountByStatus(filter db.ReportFilter) ([]db.ReportBucket, error)
}

// ReportFilterInput holds raw query-string values.
type ReportFilterInput struct {
	From         string
	To           string
	Status       string
	Municipality string
	Crop         string
}

type BarChart struct {
	Key   string
	Bars  []Bar
	Max   int64
	Total int64
}

type Bar struct {
	Label   string
	Count   int64
	Percent float64
}

type Report struct {
	Filter ReportFilterInput
	Rows   []db.ReportRow
	Charts []BarChart
}

type ReportService struct {
	reports  ReportReader
	location *time.Location
}

func NewReportService(reports ReportReader, location *time.Location) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{reports: reports, location: location}
}

// ParseReportFilter turns inclusive calendar dates into a half-open
// [from, to+1day) range in the service location.
func (service *ReportService) ParseReportFilter(input ReportFilterInput) (db.ReportFilter, error) {
	filter := db.ReportFilter{
		Municipality: CanonicalMunicipality(input.Municipality),
	}

	if crop := strings.TrimSpace(input.Crop); crop != "" {
		if slug, ok := LookupCropSlug(crop); ok {
			filter.Crop = slug
		} else {
			filter.Crop = FoldKey(crop)
		}
	}

	if status := strings.ToLower(strings.TrimSpace(input.Status)); status != "" {
		if !models.IsKnownRequestStatus(status) {
			return db.ReportFilter{}, ErrReportStatusFilter
		}
		filter.Status = status
	}

	if raw := strings.TrimSpace(input.From); raw != "" {
		from, err := time.ParseInLocation(reportDateLayout, raw, service.location)
		if err != nil {
			return db.ReportFilter{}, ErrReportDateInvalid
		}
		filter.From = from
	}
	if raw := strings.TrimSpace(input.To); raw != "" {
		to, err := time.ParseInLocation(reportDateLayout, raw, service.location)
		if err != nil {
			return db.ReportFilter{}, ErrReportDateInvalid
		}
		filter.To = to.AddDate(0, 0, 1)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return db.ReportFilter{}, ErrReportRangeInvalid
	}
	return filter, nil
}

func (service *ReportService) Build(input ReportFilterInput) (Report, error) {
	filter, err := service.ParseReportFilter(input)
	if err != nil {
		return Report{Filter: input}, err
	}

	rows, err := service.reports.Rows(filter)
	if err != nil {
		return Report{Filter: input}, err
	}

	type chartSource struct {
		key   string
		query func(db.ReportFilter) ([]db.ReportBucket, error)
	}
	sources := []chartSource{
		{key: "month", query: service.reports.CountByMonth},
		{key: "crop", query: service.reports.CountByCrop},
		{key: "municipality", query: service.reports.CountByMunicipality},
		{key: "status", query: service.reports.CountByStatus},
	}

	charts := make([]BarChart, 0, len(sources))
	for _, source := range sources {
		buckets, err := source.query(filter)
		if err != nil {
			return Report{Filter: input}, err
		}
		charts = append(charts, BuildBarChart(source.key, buckets))
	}

	return Report{Filter: input, Rows: rows, Charts: charts}, nil
}

func (service *ReportService) Rows(input ReportFilterInput) ([]db.ReportRow, error) {
	filter, err := service.ParseReportFilter(input)
	if err != nil {
		return nil, err
	}
	return service.reports.Rows(filter)
}

// BuildBarChart scales bars relative to the largest bucket.
func BuildBarChart(key string, buckets []db.ReportBucket) BarChart {
	chart := BarChart{Key: key, Bars: make([]Bar, 0, len(buckets))}
	for _, bucket := range buckets {
		if bucket.Count > chart.Max {
			chart.Max = bucket.Count
		}
		chart.Total += bucket.Count
	}
	for _, bucket := range buckets {
		bar := Bar{Label: bucket.Label, Count: bucket.Count}
		if chart.Max > 0 {
			bar.Percent = float64(bucket.Count) * 100 / float64(chart.Max)
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart
}

func (service *ReportService) CSVRecord(row db.ReportRow) []string {
	harvest := ""
	if row.HarvestDate != nil {
		harvest = row.HarvestDate.Format(reportDateLayout)
	}
	crop := ""
	if row.Crop != "" {
		crop = CropName(row.Crop)
	}
	return []string{
		strconv.FormatUint(uint64(row.ID), 10),
		row.Username,
		crop,
		row.Municipality,
		row.SowingDate.Format(reportDateLayout),
		strconv.FormatFloat(row.Quantity, 'f', 2, 64),
		harvest,
		row.Status,
		row.Viability,
		row.CreatedAt.In(service.location).Format("2006-01-02 15:04"),
	}
}
