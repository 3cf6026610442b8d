package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// ReportService defines the report operations used by the handler
type ReportService interface {
	Generate(ctx context.Context, agentID string, input services.ReportInput) (*entities.Report, error)
	Get(ctx context.Context, agentID, id string) (*entities.Report, error)
	List(ctx context.Context, agentID string, page pagination.Params) (pagination.Page[*entities.Report], error)
	RenderPDF(report *entities.Report) ([]byte, error)
}

// ReportHandler handles report generation and download
type ReportHandler struct {
	service ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GenerateReport handles POST /api/reports
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	var input services.ReportInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	report, err := h.service.Generate(r.Context(), agentID, input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, "report generated", report)
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	page, err := h.service.List(r.Context(), agentID, pagination.FromQuery(r.URL.Query(), services.ReportSorting))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", page)
}

// GetReport handles GET /api/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	report, err := h.service.Get(r.Context(), agentID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", report)
}

// DownloadReportPDF handles GET /api/reports/{id}/pdf
func (h *ReportHandler) DownloadReportPDF(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	report, err := h.service.Get(r.Context(), agentID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	data, err := h.service.RenderPDF(report)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.pdf"`, report.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
