package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/report"
	"github.com/gin-gonic/gin"
)

type ReportService interface {
	Monthly(ctx context.Context, organizationID int64, year, month int) (*report.MonthlyReport, error)
	Legacy(ctx context.Context, organizationID int64, year, month int) (*report.LegacyReport, error)
	Dashboard(ctx context.Context, year, month int) (*report.DashboardSummary, error)
	ExportMonthlyXLSX(ctx context.Context, organizationID int64, year, month int) ([]byte, error)
}

type ReportHandler struct {
	reportService ReportService
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func reportError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, report.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_period"})
	case errors.Is(err, organization.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "organization_not_found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *ReportHandler) reportArgs(c *gin.Context) (int64, int, int, bool) {
	orgID := queryInt64(c, "organization_id")
	if orgID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_id"})
		return 0, 0, 0, false
	}
	return orgID, queryInt(c, "year", 0), queryInt(c, "month", 0), true
}

func (h *ReportHandler) Monthly(c *gin.Context) {
	orgID, year, month, ok := h.reportArgs(c)
	if !ok {
		return
	}
	rep, err := h.reportService.Monthly(c.Request.Context(), orgID, year, month)
	if err != nil {
		reportError(c, err, "monthly_report_failed")
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Legacy keeps the older aggregate-only report shape alive for
// existing consumers.
func (h *ReportHandler) Legacy(c *gin.Context) {
	orgID, year, month, ok := h.reportArgs(c)
	if !ok {
		return
	}
	rep, err := h.reportService.Legacy(c.Request.Context(), orgID, year, month)
	if err != nil {
		reportError(c, err, "legacy_report_failed")
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportHandler) ExportMonthly(c *gin.Context) {
	orgID, year, month, ok := h.reportArgs(c)
	if !ok {
		return
	}
	data, err := h.reportService.ExportMonthlyXLSX(c.Request.Context(), orgID, year, month)
	if err != nil {
		reportError(c, err, "export_report_failed")
		return
	}
	filename := fmt.Sprintf("monthly_report_%d_%04d_%02d.xlsx", orgID, year, month)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.reportService.Dashboard(c.Request.Context(), queryInt(c, "year", 0), queryInt(c, "month", 0))
	if err != nil {
		reportError(c, err, "dashboard_failed")
		return
	}
	c.JSON(http.StatusOK, summary)
}
