package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

const appointmentsTable = "appointments"

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	baseAdapter
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{baseAdapter: newBaseAdapter(client)}
}

func appointmentColumns() []interface{} {
	return []interface{}{
		"id", "agent_id", "doctor_id",
		"patient_name", "patient_email", "patient_phone",
		goqu.COALESCE(goqu.I("patient_nic"), "").As("patient_nic"),
		dayColumn("date"), "time_slot", "amount", "payment_method", "status",
		"payment_id", "cancellation_reason",
		goqu.COALESCE(goqu.I("notes"), "").As("notes"),
		"created_at", "updated_at",
	}
}

func slotHoldingStatuses() []string {
	statuses := entities.SlotHoldingStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// slotOrder sorts by the clock time of a slot label. Labels such as "14:00"
// and "02:00 PM" are both understood; anything else sorts last by its text.
func slotOrder() []exp.OrderedExpression {
	clock := goqu.L(`CASE
		WHEN time_slot ~* '^[0-9]{1,2}:[0-9]{2}\s+[AP]M$' THEN to_timestamp(time_slot, 'HH12:MI AM')::time
		WHEN time_slot ~ '^[0-9]{1,2}:[0-9]{2}$' THEN to_timestamp(time_slot, 'HH24:MI')::time
	END`)
	return []exp.OrderedExpression{goqu.I("date").Asc(), clock.Asc().NullsLast(), goqu.I("time_slot").Asc()}
}

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":                  appointment.ID,
		"agent_id":            appointment.AgentID,
		"doctor_id":           appointment.DoctorID,
		"patient_name":        appointment.PatientName,
		"patient_email":       appointment.PatientEmail,
		"patient_phone":       appointment.PatientPhone,
		"patient_nic":         nullIfEmpty(appointment.PatientNIC),
		"date":                appointment.Date,
		"time_slot":           appointment.TimeSlot,
		"amount":              appointment.Amount,
		"payment_method":      appointment.PaymentMethod,
		"status":              appointment.Status,
		"payment_id":          nullableString(appointment.PaymentID),
		"cancellation_reason": nullableString(appointment.CancellationReason),
		"notes":               nullIfEmpty(appointment.Notes),
		"created_at":          appointment.CreatedAt,
		"updated_at":          appointment.UpdatedAt,
	}

	_, err := a.exec(ctx, a.db.Insert(appointmentsTable).Rows(record), "create appointment")
	return err
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id, agentID string) (*entities.Appointment, error) {
	return a.getOne(ctx, a.scoped(id, agentID))
}

// GetForUpdate retrieves an appointment and locks its row
func (a *AppointmentAdapter) GetForUpdate(ctx context.Context, id, agentID string) (*entities.Appointment, error) {
	return a.getOne(ctx, a.scoped(id, agentID).ForUpdate(exp.Wait))
}

func (a *AppointmentAdapter) scoped(id, agentID string) *goqu.SelectDataset {
	where := goqu.Ex{"id": id}
	if agentID != "" {
		where["agent_id"] = agentID
	}
	return a.db.Select(appointmentColumns()...).From(appointmentsTable).Where(where)
}

func (a *AppointmentAdapter) getOne(ctx context.Context, ds *goqu.SelectDataset) (*entities.Appointment, error) {
	var found []*entities.Appointment
	if err := a.selectAll(ctx, &found, ds.Limit(1)); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError("appointment not found")
	}
	return found[0], nil
}

// Update updates an appointment
func (a *AppointmentAdapter) Update(ctx context.Context, appointment *entities.Appointment) error {
	appointment.UpdatedAt = time.Now().UTC()

	record := goqu.Record{
		"patient_name":        appointment.PatientName,
		"patient_email":       appointment.PatientEmail,
		"patient_phone":       appointment.PatientPhone,
		"patient_nic":         nullIfEmpty(appointment.PatientNIC),
		"date":                appointment.Date,
		"time_slot":           appointment.TimeSlot,
		"amount":              appointment.Amount,
		"payment_method":      appointment.PaymentMethod,
		"status":              appointment.Status,
		"payment_id":          nullableString(appointment.PaymentID),
		"cancellation_reason": nullableString(appointment.CancellationReason),
		"notes":               nullIfEmpty(appointment.Notes),
		"updated_at":          appointment.UpdatedAt,
	}

	rowsAffected, err := a.exec(ctx,
		a.db.Update(appointmentsTable).Set(record).Where(goqu.Ex{"id": appointment.ID}),
		"update appointment",
	)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", appointment.ID))
	}
	return nil
}

// ExistsConflict reports whether another slot-holding appointment claims the slot
func (a *AppointmentAdapter) ExistsConflict(ctx context.Context, doctorID, date, timeSlot, excludeID string) (bool, error) {
	ds := a.db.From(appointmentsTable).Where(goqu.Ex{
		"doctor_id": doctorID,
		"date":      date,
		"time_slot": timeSlot,
		"status":    slotHoldingStatuses(),
	})
	if excludeID != "" {
		ds = ds.Where(goqu.C("id").Neq(excludeID))
	}

	total, err := a.count(ctx, ds)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// List returns one page of appointments matching filter
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, int, error) {
	ds := a.db.Select(appointmentColumns()...).From(appointmentsTable)

	if filter.AgentID != "" {
		ds = ds.Where(goqu.Ex{"agent_id": filter.AgentID})
	}
	if filter.DoctorID != "" {
		ds = ds.Where(goqu.Ex{"doctor_id": filter.DoctorID})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.DateFrom != "" {
		ds = ds.Where(goqu.C("date").Gte(filter.DateFrom))
	}
	if filter.DateTo != "" {
		ds = ds.Where(goqu.C("date").Lte(filter.DateTo))
	}
	if filter.Search != "" {
		ds = ds.Where(ilike(filter.Search, "patient_name", "patient_email", "patient_phone"))
	}

	total, err := a.count(ctx, ds)
	if err != nil {
		return nil, 0, err
	}

	appointments := make([]*entities.Appointment, 0)
	if err := a.selectAll(ctx, &appointments, paginate(ds, filter.Page)); err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// ListUnpaid returns appointments with no payment that are not cancelled
func (a *AppointmentAdapter) ListUnpaid(ctx context.Context, agentID string) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns()...).From(appointmentsTable).
		Where(
			goqu.Ex{"agent_id": agentID},
			goqu.C("payment_id").IsNull(),
			goqu.C("status").Neq(entities.AppointmentStatusCancelled),
		).
		Order(slotOrder()...)

	appointments := make([]*entities.Appointment, 0)
	if err := a.selectAll(ctx, &appointments, ds); err != nil {
		return nil, err
	}
	return appointments, nil
}

// ListUpcoming returns the next slot-holding appointments from fromDate
func (a *AppointmentAdapter) ListUpcoming(ctx context.Context, agentID, fromDate string, limit int) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns()...).From(appointmentsTable).
		Where(
			goqu.Ex{"agent_id": agentID, "status": slotHoldingStatuses()},
			goqu.C("date").Gte(fromDate),
		).
		Order(slotOrder()...).
		Limit(uint(limit))

	appointments := make([]*entities.Appointment, 0)
	if err := a.selectAll(ctx, &appointments, ds); err != nil {
		return nil, err
	}
	return appointments, nil
}

// HeldSlots returns the time slots a doctor already has held on date
func (a *AppointmentAdapter) HeldSlots(ctx context.Context, doctorID, date string) ([]string, error) {
	ds := a.db.Select("time_slot").From(appointmentsTable).
		Where(goqu.Ex{"doctor_id": doctorID, "date": date, "status": slotHoldingStatuses()})

	var rows []struct {
		TimeSlot string `db:"time_slot"`
	}
	if err := a.selectAll(ctx, &rows, ds); err != nil {
		return nil, err
	}

	slots := make([]string, len(rows))
	for i, r := range rows {
		slots[i] = r.TimeSlot
	}
	return slots, nil
}

func bookedWithin(agentID string, period repositories.DateRange) []exp.Expression {
	where := []exp.Expression{
		goqu.L("created_at::date").Gte(period.From),
		goqu.L("created_at::date").Lte(period.To),
	}
	if agentID != "" {
		where = append(where, goqu.Ex{"agent_id": agentID})
	}
	return where
}

// CountByStatus groups appointments booked within period by status
func (a *AppointmentAdapter) CountByStatus(ctx context.Context, agentID string, period repositories.DateRange) ([]entities.StatusCount, error) {
	ds := a.db.From(appointmentsTable).
		Select(
			goqu.C("status"),
			goqu.COUNT("*").As("count"),
			goqu.COALESCE(goqu.SUM("amount"), 0).As("amount"),
		).
		Where(bookedWithin(agentID, period)...).
		GroupBy("status").
		Order(goqu.I("status").Asc())

	counts := make([]entities.StatusCount, 0)
	if err := a.selectAll(ctx, &counts, ds); err != nil {
		return nil, err
	}
	return counts, nil
}

// CountByDate groups appointments booked within period by appointment date
func (a *AppointmentAdapter) CountByDate(ctx context.Context, agentID string, period repositories.DateRange) ([]entities.DailyCount, error) {
	ds := a.db.From(appointmentsTable).
		Select(
			dayColumn("date"),
			goqu.COUNT("*").As("count"),
			goqu.COALESCE(goqu.SUM("amount"), 0).As("amount"),
		).
		Where(bookedWithin(agentID, period)...).
		GroupBy(goqu.I("date")).
		Order(goqu.I("date").Asc())

	counts := make([]entities.DailyCount, 0)
	if err := a.selectAll(ctx, &counts, ds); err != nil {
		return nil, err
	}
	return counts, nil
}
