package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/royale/pos/internal/application/report"
)

// ReportHandler serves exports and summaries
type ReportHandler struct {
	BaseHandler
	reports *reportapp.Service
	now     func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.Service) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

// SalesCSV handles GET /reports/sales.csv as a file download
func (h *ReportHandler) SalesCSV(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.reports.ExportSalesCSV(c.Request.Context(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.reports.ExportFilename(h.now())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Daily handles GET /reports/daily
func (h *ReportHandler) Daily(c *gin.Context) {
	days, err := h.reports.DailyAggregates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, days, len(days))
}

// Dashboard handles GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Archive handles POST /reports/archive
func (h *ReportHandler) Archive(c *gin.Context) {
	res, err := h.reports.ArchiveSalesCSV(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, res)
}
