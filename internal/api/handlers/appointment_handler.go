package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// AppointmentService defines the appointment operations used by the handler
type AppointmentService interface {
	Create(ctx context.Context, agentID string, input services.CreateAppointmentInput) (*entities.Appointment, error)
	BulkCreate(ctx context.Context, agentID string, inputs []services.CreateAppointmentInput) (*services.BulkResult, error)
	Get(ctx context.Context, agentID, id string) (*entities.Appointment, error)
	List(ctx context.Context, filter repositories.AppointmentFilter) (pagination.Page[*entities.Appointment], error)
	ListUnpaid(ctx context.Context, agentID string) ([]*entities.Appointment, error)
	Update(ctx context.Context, agentID, id string, input services.UpdateAppointmentInput) (*entities.Appointment, error)
	Confirm(ctx context.Context, agentID, id string) (*entities.Appointment, error)
	Cancel(ctx context.Context, agentID, id, reason string) (*entities.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus, reason string) (*entities.Appointment, error)
}

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	service AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status entities.AppointmentStatus `json:"status"`
	Reason string                     `json:"reason"`
}

type bulkRequest struct {
	Appointments []services.CreateAppointmentInput `json:"appointments"`
}

// CreateAppointment handles POST /api/appointments
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var input services.CreateAppointmentInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	appointment, err := h.service.Create(r.Context(), agentID, input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, "appointment created", appointment)
}

// BulkCreateAppointments handles POST /api/appointments/bulk. The body is
// either a JSON array of appointments or an object with an "appointments" array.
func (h *AppointmentHandler) BulkCreateAppointments(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var inputs []services.CreateAppointmentInput
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
	} else {
		var req bulkRequest
		if err := json.Unmarshal(trimmed, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
		inputs = req.Appointments
	}

	result, err := h.service.BulkCreate(r.Context(), agentID, inputs)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	switch {
	case len(result.Created) == 0:
		respondWithJSON(w, http.StatusUnprocessableEntity, envelope{
			Success: false,
			Error:   "no appointments could be created",
			Data:    result,
		})
	case len(result.Failed) > 0:
		respondWithData(w, http.StatusMultiStatus, "some appointments could not be created", result)
	default:
		respondWithData(w, http.StatusCreated, "appointments created", result)
	}
}

// ListAppointments handles GET /api/appointments
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := repositories.AppointmentFilter{
		AgentID:  agentID,
		DoctorID: q.Get("doctorId"),
		Status:   entities.AppointmentStatus(strings.ToUpper(q.Get("status"))),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		Search:   strings.TrimSpace(q.Get("search")),
		Page:     pagination.FromQuery(q, services.AppointmentSorting),
	}
	if agentID == "" {
		filter.AgentID = q.Get("agentId")
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", page)
}

// ListUnpaidAppointments handles GET /api/appointments/unpaid
func (h *AppointmentHandler) ListUnpaidAppointments(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	appointments, err := h.service.ListUnpaid(r.Context(), agentID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", appointments)
}

// GetAppointment handles GET /api/appointments/{id}
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	appointment, err := h.service.Get(r.Context(), agentID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", appointment)
}

// UpdateAppointment handles PUT /api/appointments/{id}
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var input services.UpdateAppointmentInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	appointment, err := h.service.Update(r.Context(), agentID, r.PathValue("id"), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "appointment updated", appointment)
}

// ConfirmAppointment handles POST /api/appointments/{id}/confirm
func (h *AppointmentHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	appointment, err := h.service.Confirm(r.Context(), agentID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "appointment confirmed", appointment)
}

// CancelAppointment handles POST /api/appointments/{id}/cancel
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var req cancelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	appointment, err := h.service.Cancel(r.Context(), agentID, r.PathValue("id"), req.Reason)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "appointment cancelled", appointment)
}

// UpdateAppointmentStatus handles PATCH /api/appointments/{id}/status
func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if req.Status == "" {
		respondWithAppError(w, r, apperrors.NewValidationError("status is required"))
		return
	}

	status := entities.AppointmentStatus(strings.ToUpper(string(req.Status)))
	appointment, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), status, req.Reason)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "appointment status updated", appointment)
}
