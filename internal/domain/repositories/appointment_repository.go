package repositories

import (
	"context"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create inserts a new appointment. A second slot-holding appointment for the
	// same doctor, date and slot fails with a ConflictError.
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment. A non-empty agentID scopes the lookup.
	GetByID(ctx context.Context, id, agentID string) (*entities.Appointment, error)

	// GetForUpdate retrieves an appointment and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, id, agentID string) (*entities.Appointment, error)

	// Update writes every mutable column of an appointment
	Update(ctx context.Context, appointment *entities.Appointment) error

	// ExistsConflict reports whether another slot-holding appointment claims the
	// doctor, date and slot. excludeID may be empty.
	ExistsConflict(ctx context.Context, doctorID, date, timeSlot, excludeID string) (bool, error)

	// List returns one page of appointments matching filter and the total count
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, int, error)

	// ListUnpaid returns an agent's appointments with no payment that are not cancelled
	ListUnpaid(ctx context.Context, agentID string) ([]*entities.Appointment, error)

	// ListUpcoming returns slot-holding appointments on or after fromDate, soonest first
	ListUpcoming(ctx context.Context, agentID, fromDate string, limit int) ([]*entities.Appointment, error)

	// HeldSlots returns the time slots held for a doctor on date
	HeldSlots(ctx context.Context, doctorID, date string) ([]string, error)

	// CountByStatus groups appointments booked within [from, to] by status
	CountByStatus(ctx context.Context, agentID string, period DateRange) ([]entities.StatusCount, error)

	// CountByDate groups appointments booked within [from, to] by appointment date
	CountByDate(ctx context.Context, agentID string, period DateRange) ([]entities.DailyCount, error)
}

// DateRange is an inclusive range of calendar days formatted as entities.DateLayout
type DateRange struct {
	From string
	To   string
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	AgentID  string
	DoctorID string
	Status   entities.AppointmentStatus
	DateFrom string
	DateTo   string
	// Search matches patient name, email or phone case-insensitively
	Search string
	Page   pagination.Params
}
