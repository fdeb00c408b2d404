package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizbd/exam-portal/internal/response"
	"github.com/quizbd/exam-portal/internal/service"
)

// ResultHandler exposes the aggregated results to the admin dashboard.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// GetPivot godoc
// GET /api/v1/admin/results
// Returns the student/exam-title pivot table.
func (h *ResultHandler) GetPivot(c *gin.Context) {
	response.Success(c, http.StatusOK, h.resultService.Pivot(c.Request.Context()))
}

// GetRaw godoc
// GET /api/v1/admin/results/raw
// Returns the append-ordered result log.
func (h *ResultHandler) GetRaw(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"results": h.resultService.Raw(c.Request.Context())})
}

// ExportCSV godoc
// GET /api/v1/admin/results/export
// Streams the pivot table as a CSV download.
func (h *ResultHandler) ExportCSV(c *gin.Context) {
	csv := h.resultService.ExportCSV(c.Request.Context())

	c.Header("Content-Disposition", `attachment; filename="consolidated_exam_results.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}
