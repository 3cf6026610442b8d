package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const paymentsTable = "payments"

var paymentColumns = []interface{}{
	"id", "appointment_id", "agent_id", "amount", "method", "status",
	"transaction_ref", "paid_at", "created_at", "updated_at",
}

// PaymentAdapter implements the PaymentRepository interface
type PaymentAdapter struct {
	baseAdapter
}

// NewPaymentAdapter creates a new payment adapter
func NewPaymentAdapter(client *postgres.Client) repositories.PaymentRepository {
	return &PaymentAdapter{baseAdapter: newBaseAdapter(client)}
}

// Create creates a new payment
func (a *PaymentAdapter) Create(ctx context.Context, payment *entities.Payment) error {
	record := goqu.Record{
		"id":              payment.ID,
		"appointment_id":  payment.AppointmentID,
		"agent_id":        payment.AgentID,
		"amount":          payment.Amount,
		"method":          payment.Method,
		"status":          payment.Status,
		"transaction_ref": payment.TransactionRef,
		"paid_at":         nullableTime(payment.PaidAt),
		"created_at":      payment.CreatedAt,
		"updated_at":      payment.UpdatedAt,
	}

	_, err := a.exec(ctx, a.db.Insert(paymentsTable).Rows(record), "create payment")
	return err
}

// GetByID retrieves a payment by ID
func (a *PaymentAdapter) GetByID(ctx context.Context, id, agentID string) (*entities.Payment, error) {
	where := goqu.Ex{"id": id}
	if agentID != "" {
		where["agent_id"] = agentID
	}
	return a.getOne(ctx, where, fmt.Sprintf("payment with id %s not found", id))
}

// GetByAppointmentID retrieves the payment linked to an appointment
func (a *PaymentAdapter) GetByAppointmentID(ctx context.Context, appointmentID string) (*entities.Payment, error) {
	return a.getOne(ctx, goqu.Ex{"appointment_id": appointmentID}, "payment not found for appointment")
}

func (a *PaymentAdapter) getOne(ctx context.Context, where goqu.Ex, notFound string) (*entities.Payment, error) {
	ds := a.db.Select(paymentColumns...).From(paymentsTable).Where(where).Limit(1)

	var found []*entities.Payment
	if err := a.selectAll(ctx, &found, ds); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	return found[0], nil
}

// List returns one page of payments
func (a *PaymentAdapter) List(ctx context.Context, filter repositories.PaymentFilter) ([]*entities.Payment, int, error) {
	ds := a.db.Select(paymentColumns...).From(paymentsTable)

	if filter.AgentID != "" {
		ds = ds.Where(goqu.Ex{"agent_id": filter.AgentID})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.DateFrom != "" {
		ds = ds.Where(goqu.L("created_at::date").Gte(filter.DateFrom))
	}
	if filter.DateTo != "" {
		ds = ds.Where(goqu.L("created_at::date").Lte(filter.DateTo))
	}

	total, err := a.count(ctx, ds)
	if err != nil {
		return nil, 0, err
	}

	payments := make([]*entities.Payment, 0)
	if err := a.selectAll(ctx, &payments, paginate(ds, filter.Page)); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Summary aggregates the agent's payments created within period
func (a *PaymentAdapter) Summary(ctx context.Context, agentID string, period repositories.DateRange) (*entities.PaymentSummary, error) {
	ds := a.db.From(paymentsTable).
		Select(
			goqu.C("method"),
			goqu.C("status"),
			goqu.COUNT("*").As("count"),
			goqu.COALESCE(goqu.SUM("amount"), 0).As("amount"),
		).
		Where(
			goqu.Ex{"agent_id": agentID},
			goqu.L("created_at::date").Gte(period.From),
			goqu.L("created_at::date").Lte(period.To),
		).
		GroupBy("method", "status")

	var rows []struct {
		Method entities.PaymentMethod `db:"method"`
		Status entities.PaymentStatus `db:"status"`
		Count  int                    `db:"count"`
		Amount float64                `db:"amount"`
	}
	if err := a.selectAll(ctx, &rows, ds); err != nil {
		return nil, err
	}

	summary := &entities.PaymentSummary{ByMethod: make(map[entities.PaymentMethod]float64)}
	for _, r := range rows {
		switch r.Status {
		case entities.PaymentStatusPaid:
			summary.TotalPaid += r.Amount
			summary.PaidCount += r.Count
			summary.ByMethod[r.Method] += r.Amount
		case entities.PaymentStatusFailed:
			summary.FailedCount += r.Count
		}
	}
	return summary, nil
}

// SumPaid totals PAID payments settled within period. An empty agentID sums every agent.
func (a *PaymentAdapter) SumPaid(ctx context.Context, agentID string, period repositories.DateRange) (float64, error) {
	ds := a.db.From(paymentsTable).
		Select(goqu.COALESCE(goqu.SUM("amount"), 0)).
		Where(
			goqu.Ex{"status": entities.PaymentStatusPaid},
			goqu.L("paid_at::date").Gte(period.From),
			goqu.L("paid_at::date").Lte(period.To),
		)
	if agentID != "" {
		ds = ds.Where(goqu.Ex{"agent_id": agentID})
	}

	var total float64
	if err := a.scalar(ctx, ds, &total); err != nil {
		return 0, err
	}
	return total, nil
}
