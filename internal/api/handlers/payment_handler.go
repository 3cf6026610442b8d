package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// PaymentService defines the payment queries used by the handler
type PaymentService interface {
	List(ctx context.Context, filter repositories.PaymentFilter) (pagination.Page[*entities.Payment], error)
	Get(ctx context.Context, agentID, id string) (*entities.Payment, error)
	Summary(ctx context.Context, agentID string, period repositories.DateRange) (*entities.PaymentSummary, error)
}

// PaymentHandler handles payment queries
type PaymentHandler struct {
	service PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// ListPayments handles GET /api/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.service.List(r.Context(), repositories.PaymentFilter{
		AgentID:  agentID,
		Status:   entities.PaymentStatus(strings.ToUpper(q.Get("status"))),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		Page:     pagination.FromQuery(q, services.PaymentSorting),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", page)
}

// GetPayment handles GET /api/payments/{id}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	payment, err := h.service.Get(r.Context(), agentID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", payment)
}

// PaymentSummary handles GET /api/payments/summary?dateFrom=&dateTo=
func (h *PaymentHandler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	agentID, ok := scope(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	summary, err := h.service.Summary(r.Context(), agentID, repositories.DateRange{
		From: q.Get("dateFrom"),
		To:   q.Get("dateTo"),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", summary)
}
