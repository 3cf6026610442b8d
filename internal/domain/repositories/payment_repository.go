package repositories

import (
	"context"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create inserts a payment. A second payment for the same appointment fails
	// with a ConflictError.
	Create(ctx context.Context, payment *entities.Payment) error

	// GetByID retrieves a payment. A non-empty agentID scopes the lookup.
	GetByID(ctx context.Context, id, agentID string) (*entities.Payment, error)

	GetByAppointmentID(ctx context.Context, appointmentID string) (*entities.Payment, error)

	List(ctx context.Context, filter PaymentFilter) ([]*entities.Payment, int, error)

	// Summary aggregates the agent's payments created within period
	Summary(ctx context.Context, agentID string, period DateRange) (*entities.PaymentSummary, error)

	// SumPaid totals PAID payments settled within period
	SumPaid(ctx context.Context, agentID string, period DateRange) (float64, error)
}

// PaymentFilter defines filters for listing payments
type PaymentFilter struct {
	AgentID  string
	Status   entities.PaymentStatus
	DateFrom string
	DateTo   string
	Page     pagination.Params
}
