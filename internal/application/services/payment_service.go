package services

import (
	"context"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// PaymentSorting is the sort allow-list for payment listings
var PaymentSorting = pagination.Sorting{
	Allowed: map[string]string{
		"amount":    "amount",
		"paidAt":    "paid_at",
		"createdAt": "created_at",
	},
	DefaultKey: "createdAt",
	DefaultDir: pagination.SortDesc,
}

// PaymentService exposes the payments created on confirmation. Payments are
// never created or changed here.
type PaymentService struct {
	repo repositories.PaymentRepository
}

// NewPaymentService creates a new payment service
func NewPaymentService(repo repositories.PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo}
}

// List returns one page of payments matching filter
func (s *PaymentService) List(ctx context.Context, filter repositories.PaymentFilter) (pagination.Page[*entities.Payment], error) {
	switch filter.Status {
	case "", entities.PaymentStatusPending, entities.PaymentStatusPaid, entities.PaymentStatusFailed:
	default:
		return pagination.Page[*entities.Payment]{}, apperrors.NewValidationError("status must be one of PENDING PAID FAILED")
	}
	if err := validateDateRange(filter.DateFrom, filter.DateTo); err != nil {
		return pagination.Page[*entities.Payment]{}, err
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*entities.Payment]{}, err
	}
	return pagination.NewPage(items, total, filter.Page), nil
}

// Get returns a payment. A non-empty agentID hides other agents' payments.
func (s *PaymentService) Get(ctx context.Context, agentID, id string) (*entities.Payment, error) {
	return s.repo.GetByID(ctx, id, agentID)
}

// Summary aggregates the agent's payments over period
func (s *PaymentService) Summary(ctx context.Context, agentID string, period repositories.DateRange) (*entities.PaymentSummary, error) {
	if err := validateDateRange(period.From, period.To); err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, agentID, period)
	if err != nil {
		return nil, err
	}
	if summary.ByMethod == nil {
		summary.ByMethod = map[entities.PaymentMethod]float64{}
	}
	return summary, nil
}
