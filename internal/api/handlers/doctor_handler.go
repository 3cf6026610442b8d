package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/auth"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// DoctorService defines the doctor catalogue operations used by the handler
type DoctorService interface {
	Create(ctx context.Context, input services.DoctorInput) (*entities.Doctor, error)
	Get(ctx context.Context, id string, includeInactive bool) (*entities.Doctor, error)
	Update(ctx context.Context, id string, input services.UpdateDoctorInput) (*entities.Doctor, error)
	SetAvailability(ctx context.Context, id string, calendar entities.AvailabilityCalendar) (*entities.Doctor, error)
	Deactivate(ctx context.Context, id string) (*entities.Doctor, error)
	List(ctx context.Context, filter repositories.DoctorFilter) (pagination.Page[*entities.Doctor], error)
	Specializations(ctx context.Context) ([]string, error)
	AvailableSlots(ctx context.Context, id, date string) (*services.DoctorSlots, error)
}

// DoctorHandler handles doctor catalogue requests
type DoctorHandler struct {
	service DoctorService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(service DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

type availabilityRequest struct {
	Availability entities.AvailabilityCalendar `json:"availability"`
}

func isAdmin(r *http.Request) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	return ok && claims.Role == entities.UserRoleAdmin
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.DoctorFilter{
		Search:         strings.TrimSpace(q.Get("search")),
		Specialization: q.Get("specialization"),
		Hospital:       q.Get("hospital"),
		Page:           pagination.FromQuery(q, services.DoctorSorting),
	}
	if isAdmin(r) && q.Get("includeInactive") == "true" {
		filter.IncludeInactive = true
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", page)
}

// ListSpecializations handles GET /api/doctors/specializations
func (h *DoctorHandler) ListSpecializations(w http.ResponseWriter, r *http.Request) {
	specializations, err := h.service.Specializations(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", specializations)
}

// GetDoctor handles GET /api/doctors/{id}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.service.Get(r.Context(), r.PathValue("id"), isAdmin(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", doctor)
}

// GetDoctorSlots handles GET /api/doctors/{id}/slots?date=YYYY-MM-DD
func (h *DoctorHandler) GetDoctorSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), r.PathValue("id"), date)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", slots)
}

// CreateDoctor handles POST /api/doctors
func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var input services.DoctorInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	doctor, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, "doctor created", doctor)
}

// UpdateDoctor handles PUT /api/doctors/{id}
func (h *DoctorHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateDoctorInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	doctor, err := h.service.Update(r.Context(), r.PathValue("id"), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "doctor updated", doctor)
}

// SetDoctorAvailability handles PUT /api/doctors/{id}/availability
func (h *DoctorHandler) SetDoctorAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	doctor, err := h.service.SetAvailability(r.Context(), r.PathValue("id"), req.Availability)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "availability updated", doctor)
}

// DeactivateDoctor handles DELETE /api/doctors/{id}
func (h *DoctorHandler) DeactivateDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.service.Deactivate(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "doctor deactivated", doctor)
}
