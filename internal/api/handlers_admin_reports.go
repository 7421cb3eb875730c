package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/agrosoft/agrosoft/internal/models"
	"github.com/agrosoft/agrosoft/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AdminReports(c *fiber.Ctx) error {
	input := reportFilterFromQuery(c)
	report, err := handler.reportService.Build(input)
	message := ""
	if err != nil {
		if errorTranslationKey(err.Error()) == "" {
			return err
		}
		message = err.Error()
		c.Status(fiber.StatusBadRequest)
	}

	return handler.render(c, "admin_reports", fiber.Map{
		"Title":          localizedPageTitle(currentMessages(c), "meta.title.admin_reports"),
		"Report":         report,
		"Filter":         input,
		"Error":          message,
		"Statuses":       []string{models.RequestStatusPending, models.RequestStatusCompleted, models.RequestStatusProcessed},
		"Crops":          services.SelectableCrops(),
		"Municipalities": services.Municipalities(),
		"ExportURL":      reportExportURL(c),
	})
}

// AdminReportsCSV exports the rows matching the same filters as the report
// page.
func (handler *Handler) AdminReportsCSV(c *fiber.Ctx) error {
	rows, err := handler.reportService.Rows(reportFilterFromQuery(c))
	if err != nil {
		if errorTranslationKey(err.Error()) != "" {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(services.ReportCSVHeaders); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}
	for _, row := range rows {
		if err := writer.Write(handler.reportService.CSVRecord(row)); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to build export")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	now := time.Now().In(handler.location)
	setExportAttachmentHeaders(c, "text/csv; charset=utf-8", fmt.Sprintf("agrosoft-report-%s.csv", now.Format("2006-01-02")))
	return c.Send(output.Bytes())
}

func reportFilterFromQuery(c *fiber.Ctx) services.ReportFilterInput {
	return services.ReportFilterInput{
		From:         c.Query("from"),
		To:           c.Query("to"),
		Status:       c.Query("status"),
		Municipality: c.Query("municipality"),
		Crop:         c.Query("crop"),
	}
}

func reportExportURL(c *fiber.Ctx) string {
	const exportPath = "/admin/reports/export.csv"
	if query := string(c.Request().URI().QueryString()); query != "" {
		return exportPath + "?" + query
	}
	return exportPath
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}
