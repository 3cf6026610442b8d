package entities

import (
	"time"
)

// DateLayout is the calendar-day format used for appointment dates.
const DateLayout = "2006-01-02"

// MinCancellationReasonLength is the shortest accepted cancellation reason.
const MinCancellationReasonLength = 5

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// appointmentTransitions lists every allowed move. States without an entry are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending: {
		AppointmentStatusConfirmed,
		AppointmentStatusCancelled,
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusCancelled,
		AppointmentStatusCompleted,
		AppointmentStatusNoShow,
	},
}

// IsValid reports whether s is one of the known statuses.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled,
		AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// OccupiesSlot reports whether an appointment in s holds its doctor/date/slot.
func (s AppointmentStatus) OccupiesSlot() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SlotHoldingStatuses returns the statuses that occupy a booking slot.
func SlotHoldingStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed}
}

// PaymentMethod is how the agent intends to settle an appointment
type PaymentMethod string

const (
	PaymentMethodCard             PaymentMethod = "CARD"
	PaymentMethodBankTransfer     PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCash             PaymentMethod = "CASH"
	PaymentMethodCorporateAccount PaymentMethod = "CORPORATE_ACCOUNT"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCorporateAccount:
		return true
	}
	return false
}

// Appointment represents a booking made by an agent for a patient
type Appointment struct {
	ID                 string            `json:"id" db:"id"`
	AgentID            string            `json:"agentId" db:"agent_id"`
	DoctorID           string            `json:"doctorId" db:"doctor_id"`
	PatientName        string            `json:"patientName" db:"patient_name"`
	PatientEmail       string            `json:"patientEmail" db:"patient_email"`
	PatientPhone       string            `json:"patientPhone" db:"patient_phone"`
	PatientNIC         string            `json:"patientNic,omitempty" db:"patient_nic"`
	Date               string            `json:"date" db:"date"`
	TimeSlot           string            `json:"timeSlot" db:"time_slot"`
	Amount             float64           `json:"amount" db:"amount"`
	PaymentMethod      PaymentMethod     `json:"paymentMethod" db:"payment_method"`
	Status             AppointmentStatus `json:"status" db:"status"`
	PaymentID          *string           `json:"paymentId,omitempty" db:"payment_id"`
	CancellationReason *string           `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	Notes              string            `json:"notes,omitempty" db:"notes"`
	CreatedAt          time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time         `json:"updatedAt" db:"updated_at"`

	Doctor  *Doctor  `json:"doctor,omitempty" db:"-"`
	Payment *Payment `json:"payment,omitempty" db:"-"`
}

// HasPayment reports whether a payment has been linked.
func (a *Appointment) HasPayment() bool {
	return a.PaymentID != nil && *a.PaymentID != ""
}

// SameSlot reports whether a and other claim the same doctor, date and time slot.
func (a *Appointment) SameSlot(other *Appointment) bool {
	return a.DoctorID == other.DoctorID && a.Date == other.Date && a.TimeSlot == other.TimeSlot
}

// ParseDay parses a DateLayout string as midnight UTC.
func ParseDay(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// IsPastDay reports whether date falls before the UTC calendar day of now.
func IsPastDay(date string, now time.Time) (bool, error) {
	day, err := ParseDay(date)
	if err != nil {
		return false, err
	}
	return day.Before(now.UTC().Truncate(24 * time.Hour)), nil
}
