package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// Notifier receives appointment events once their transaction has committed
type Notifier interface {
	Notify(ctx context.Context, event *entities.AppointmentEvent, appointment *entities.Appointment)
}

// CreateAppointmentInput is one booking request
type CreateAppointmentInput struct {
	DoctorID      string                 `json:"doctorId" validate:"required"`
	PatientName   string                 `json:"patientName" validate:"required,min=2,max=255"`
	PatientEmail  string                 `json:"patientEmail" validate:"required,email"`
	PatientPhone  string                 `json:"patientPhone" validate:"required,min=7,max=20"`
	PatientNIC    string                 `json:"patientNic,omitempty" validate:"max=20"`
	Date          string                 `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot      string                 `json:"timeSlot" validate:"required,max=20"`
	Amount        *float64               `json:"amount,omitempty" validate:"omitempty,gte=0"`
	PaymentMethod entities.PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,oneof=CARD BANK_TRANSFER CASH CORPORATE_ACCOUNT"`
	Notes         string                 `json:"notes,omitempty" validate:"max=1000"`
}

// UpdateAppointmentInput changes an appointment. Nil fields are left as they are.
type UpdateAppointmentInput struct {
	PatientName   *string                 `json:"patientName,omitempty" validate:"omitnil,min=2,max=255"`
	PatientEmail  *string                 `json:"patientEmail,omitempty" validate:"omitnil,email"`
	PatientPhone  *string                 `json:"patientPhone,omitempty" validate:"omitnil,min=7,max=20"`
	PatientNIC    *string                 `json:"patientNic,omitempty" validate:"omitempty,max=20"`
	Date          *string                 `json:"date,omitempty" validate:"omitnil,datetime=2006-01-02"`
	TimeSlot      *string                 `json:"timeSlot,omitempty" validate:"omitnil,min=1,max=20"`
	Amount        *float64                `json:"amount,omitempty" validate:"omitempty,gte=0"`
	PaymentMethod *entities.PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,oneof=CARD BANK_TRANSFER CASH CORPORATE_ACCOUNT"`
	Notes         *string                 `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// normalized trims the text fields so validation sees what will be stored.
func (in CreateAppointmentInput) normalized() CreateAppointmentInput {
	in.DoctorID = strings.TrimSpace(in.DoctorID)
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.PatientEmail = strings.ToLower(strings.TrimSpace(in.PatientEmail))
	in.PatientPhone = strings.TrimSpace(in.PatientPhone)
	in.PatientNIC = strings.TrimSpace(in.PatientNIC)
	in.Date = strings.TrimSpace(in.Date)
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	return in
}

// normalized trims every field that is set. A field of only spaces stays set
// as an empty string and fails validation.
func (in UpdateAppointmentInput) normalized() UpdateAppointmentInput {
	in.PatientName = trimmed(in.PatientName)
	in.PatientPhone = trimmed(in.PatientPhone)
	in.PatientNIC = trimmed(in.PatientNIC)
	in.Date = trimmed(in.Date)
	in.TimeSlot = trimmed(in.TimeSlot)
	in.Notes = trimmed(in.Notes)
	if email := trimmed(in.PatientEmail); email != nil {
		lowered := strings.ToLower(*email)
		in.PatientEmail = &lowered
	}
	return in
}

// onlyNotes reports whether the input touches nothing but notes.
func (in UpdateAppointmentInput) onlyNotes() bool {
	return in.PatientName == nil && in.PatientEmail == nil && in.PatientPhone == nil &&
		in.PatientNIC == nil && in.Date == nil && in.TimeSlot == nil &&
		in.Amount == nil && in.PaymentMethod == nil
}

// BulkFailure records why one bulk item was rejected
type BulkFailure struct {
	Index int                    `json:"index"`
	Input CreateAppointmentInput `json:"input"`
	Error string                 `json:"error"`
}

// BulkResult splits a bulk request into the appointments created and the
// items that failed
type BulkResult struct {
	Created []*entities.Appointment `json:"created"`
	Failed  []BulkFailure           `json:"failed"`
}

var errBulkAllFailed = errors.New("every bulk item failed")

// AppointmentSorting is the sort allow-list for appointment listings
var AppointmentSorting = pagination.Sorting{
	Allowed: map[string]string{
		"date":        "date",
		"createdAt":   "created_at",
		"amount":      "amount",
		"status":      "status",
		"patientName": "patient_name",
	},
	DefaultKey: "createdAt",
	DefaultDir: pagination.SortDesc,
}

// AppointmentService handles appointment booking logic
type AppointmentService struct {
	tx          repositories.Transactor
	repo        repositories.AppointmentRepository
	doctorRepo  repositories.DoctorRepository
	paymentRepo repositories.PaymentRepository
	notifier    Notifier
	metrics     *observability.Metrics
	maxBulkSize int
	now         func() time.Time
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	tx repositories.Transactor,
	repo repositories.AppointmentRepository,
	doctorRepo repositories.DoctorRepository,
	paymentRepo repositories.PaymentRepository,
	notifier Notifier,
	metrics *observability.Metrics,
	maxBulkSize int,
) *AppointmentService {
	return &AppointmentService{
		tx:          tx,
		repo:        repo,
		doctorRepo:  doctorRepo,
		paymentRepo: paymentRepo,
		notifier:    notifier,
		metrics:     metrics,
		maxBulkSize: maxBulkSize,
		now:         time.Now,
	}
}

// Create books a single appointment in PENDING
func (s *AppointmentService) Create(ctx context.Context, agentID string, input CreateAppointmentInput) (*entities.Appointment, error) {
	var appointment *entities.Appointment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		appointment, err = s.createOne(ctx, agentID, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(ctx, "", string(entities.AppointmentStatusPending))
	s.notify(ctx, entities.AppointmentEventCreated, appointment, nil)
	return appointment, nil
}

// BulkCreate books every input independently. Each item runs in its own
// savepoint; when no item succeeds the whole batch is rolled back and the
// result carries only failures.
func (s *AppointmentService) BulkCreate(ctx context.Context, agentID string, inputs []CreateAppointmentInput) (*BulkResult, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("at least one appointment is required")
	}
	if s.maxBulkSize > 0 && len(inputs) > s.maxBulkSize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("a bulk request may contain at most %d appointments", s.maxBulkSize))
	}

	logger := observability.LoggerFromContext(ctx)
	result := &BulkResult{
		Created: []*entities.Appointment{},
		Failed:  []BulkFailure{},
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for i, input := range inputs {
			var created *entities.Appointment
			err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
				var err error
				created, err = s.createOne(ctx, agentID, input)
				return err
			})
			if err != nil {
				result.Failed = append(result.Failed, BulkFailure{Index: i, Input: input, Error: clientMessage(err)})
				logger.Debug().Err(err).Int("index", i).Str("agent_id", agentID).Msg("Bulk appointment item rejected")
				continue
			}
			result.Created = append(result.Created, created)
		}
		if len(result.Created) == 0 {
			return errBulkAllFailed
		}
		return nil
	})
	if err != nil && !errors.Is(err, errBulkAllFailed) {
		return nil, err
	}

	for _, appointment := range result.Created {
		s.metrics.RecordTransition(ctx, "", string(entities.AppointmentStatusPending))
		s.notify(ctx, entities.AppointmentEventCreated, appointment, nil)
	}

	logger.Info().
		Str("agent_id", agentID).
		Int("created", len(result.Created)).
		Int("failed", len(result.Failed)).
		Msg("Bulk appointment request processed")
	return result, nil
}

// createOne validates input, checks the doctor and the slot, then inserts.
// It expects to run inside a transaction.
func (s *AppointmentService) createOne(ctx context.Context, agentID string, input CreateAppointmentInput) (*entities.Appointment, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.ensureNotPast(input.Date); err != nil {
		return nil, err
	}

	doctor, err := s.activeDoctor(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSlotFree(ctx, input.DoctorID, input.Date, input.TimeSlot, ""); err != nil {
		return nil, err
	}

	amount := doctor.ConsultationFee
	if input.Amount != nil {
		amount = *input.Amount
	}
	method := input.PaymentMethod
	if method == "" {
		method = entities.PaymentMethodCorporateAccount
	}

	now := s.now().UTC()
	appointment := &entities.Appointment{
		ID:            uuid.New().String(),
		AgentID:       agentID,
		DoctorID:      doctor.ID,
		PatientName:   input.PatientName,
		PatientEmail:  input.PatientEmail,
		PatientPhone:  input.PatientPhone,
		PatientNIC:    input.PatientNIC,
		Date:          input.Date,
		TimeSlot:      input.TimeSlot,
		Amount:        amount,
		PaymentMethod: method,
		Status:        entities.AppointmentStatusPending,
		Notes:         input.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}
	appointment.Doctor = doctor
	return appointment, nil
}

func (s *AppointmentService) activeDoctor(ctx context.Context, doctorID string) (*entities.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError("doctor not found or inactive")
		}
		return nil, err
	}
	if !doctor.IsActive {
		return nil, apperrors.NewNotFoundError("doctor not found or inactive")
	}
	return doctor, nil
}

// ensureNotPast rejects a booking day earlier than today in UTC.
func (s *AppointmentService) ensureNotPast(date string) error {
	past, err := entities.IsPastDay(date, s.now())
	if err != nil {
		return apperrors.NewValidationError("date must be a date formatted YYYY-MM-DD")
	}
	if past {
		return apperrors.NewValidationError("date cannot be in the past")
	}
	return nil
}

func (s *AppointmentService) ensureSlotFree(ctx context.Context, doctorID, date, timeSlot, excludeID string) error {
	taken, err := s.repo.ExistsConflict(ctx, doctorID, date, timeSlot, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.NewConflictError(fmt.Sprintf("time slot %s on %s is already booked for this doctor", timeSlot, date))
	}
	return nil
}

// Get returns an appointment with its doctor and payment. An empty agentID
// skips the ownership check.
func (s *AppointmentService) Get(ctx context.Context, agentID, id string) (*entities.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id, agentID)
	if err != nil {
		return nil, err
	}
	s.attachRelations(ctx, appointment)
	return appointment, nil
}

func (s *AppointmentService) attachRelations(ctx context.Context, appointment *entities.Appointment) {
	logger := observability.LoggerFromContext(ctx)

	if appointment.Doctor == nil {
		doctor, err := s.doctorRepo.GetByID(ctx, appointment.DoctorID)
		if err != nil {
			logger.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("Failed to load appointment doctor")
		} else {
			appointment.Doctor = doctor
		}
	}
	if appointment.Payment == nil && appointment.HasPayment() {
		payment, err := s.paymentRepo.GetByAppointmentID(ctx, appointment.ID)
		if err != nil {
			logger.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("Failed to load appointment payment")
		} else {
			appointment.Payment = payment
		}
	}
}

// List returns one page of appointments
func (s *AppointmentService) List(ctx context.Context, filter repositories.AppointmentFilter) (pagination.Page[*entities.Appointment], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return pagination.Page[*entities.Appointment]{}, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", filter.Status))
	}
	if err := validateDateRange(filter.DateFrom, filter.DateTo); err != nil {
		return pagination.Page[*entities.Appointment]{}, err
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[*entities.Appointment]{}, err
	}
	return pagination.NewPage(items, total, filter.Page), nil
}

// ListUnpaid returns the agent's appointments with no payment that are not cancelled
func (s *AppointmentService) ListUnpaid(ctx context.Context, agentID string) ([]*entities.Appointment, error) {
	appointments, err := s.repo.ListUnpaid(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if appointments == nil {
		appointments = []*entities.Appointment{}
	}
	return appointments, nil
}

// Update edits a PENDING appointment, or only the notes of a CONFIRMED one.
// A date or slot change re-runs the conflict check against other appointments.
func (s *AppointmentService) Update(ctx context.Context, agentID, id string, input UpdateAppointmentInput) (*entities.Appointment, error) {
	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Date != nil {
		if err := s.ensureNotPast(*input.Date); err != nil {
			return nil, err
		}
	}

	var appointment *entities.Appointment
	changed := map[string]interface{}{}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		appointment, err = s.repo.GetForUpdate(ctx, id, agentID)
		if err != nil {
			return err
		}

		switch {
		case appointment.Status.IsTerminal():
			return apperrors.NewValidationError(fmt.Sprintf("cannot update a %s appointment", appointment.Status))
		case appointment.Status == entities.AppointmentStatusConfirmed && !input.onlyNotes():
			return apperrors.NewValidationError("only notes can be changed once an appointment is confirmed")
		}

		applyString := func(field string, dst *string, src *string) {
			if src == nil {
				return
			}
			value := *src
			if value != *dst {
				*dst = value
				changed[field] = value
			}
		}
		applyString("patientName", &appointment.PatientName, input.PatientName)
		applyString("patientPhone", &appointment.PatientPhone, input.PatientPhone)
		applyString("patientNic", &appointment.PatientNIC, input.PatientNIC)
		applyString("notes", &appointment.Notes, input.Notes)
		if input.PatientEmail != nil {
			email := *input.PatientEmail
			if email != appointment.PatientEmail {
				appointment.PatientEmail = email
				changed["patientEmail"] = email
			}
		}
		if input.Amount != nil && *input.Amount != appointment.Amount {
			appointment.Amount = *input.Amount
			changed["amount"] = *input.Amount
		}
		if input.PaymentMethod != nil && *input.PaymentMethod != appointment.PaymentMethod {
			appointment.PaymentMethod = *input.PaymentMethod
			changed["paymentMethod"] = *input.PaymentMethod
		}

		applyString("date", &appointment.Date, input.Date)
		applyString("timeSlot", &appointment.TimeSlot, input.TimeSlot)
		_, dateChanged := changed["date"]
		_, slotChanged := changed["timeSlot"]
		if dateChanged || slotChanged {
			if err := s.ensureSlotFree(ctx, appointment.DoctorID, appointment.Date, appointment.TimeSlot, appointment.ID); err != nil {
				return err
			}
		}

		if len(changed) == 0 {
			return nil
		}
		appointment.UpdatedAt = s.now().UTC()
		return s.repo.Update(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.attachRelations(ctx, appointment)
		s.notify(ctx, entities.AppointmentEventUpdated, appointment, changed)
	}
	return appointment, nil
}

// Confirm moves a PENDING appointment to CONFIRMED and records its PAID payment
func (s *AppointmentService) Confirm(ctx context.Context, agentID, id string) (*entities.Appointment, error) {
	var appointment *entities.Appointment
	var payment *entities.Payment

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		appointment, err = s.repo.GetForUpdate(ctx, id, agentID)
		if err != nil {
			return err
		}
		if err := checkTransition(appointment.Status, entities.AppointmentStatusConfirmed); err != nil {
			return err
		}
		if appointment.HasPayment() {
			return apperrors.NewValidationError("appointment already has a payment")
		}

		now := s.now().UTC()
		payment = &entities.Payment{
			ID:             uuid.New().String(),
			AppointmentID:  appointment.ID,
			AgentID:        appointment.AgentID,
			Amount:         appointment.Amount,
			Method:         appointment.PaymentMethod,
			Status:         entities.PaymentStatusPaid,
			TransactionRef: newTransactionRef(now),
			PaidAt:         &now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		appointment.PaymentID = &payment.ID
		appointment.Status = entities.AppointmentStatusConfirmed
		appointment.UpdatedAt = now
		return s.repo.Update(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	appointment.Payment = payment
	s.attachRelations(ctx, appointment)
	s.metrics.RecordTransition(ctx, string(entities.AppointmentStatusPending), string(entities.AppointmentStatusConfirmed))
	s.notify(ctx, entities.AppointmentEventConfirmed, appointment, map[string]interface{}{
		"status":         appointment.Status,
		"paymentId":      payment.ID,
		"transactionRef": payment.TransactionRef,
	})
	return appointment, nil
}

// Cancel moves a PENDING or CONFIRMED appointment to CANCELLED, freeing its slot
func (s *AppointmentService) Cancel(ctx context.Context, agentID, id, reason string) (*entities.Appointment, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < entities.MinCancellationReasonLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cancellation reason must be at least %d characters", entities.MinCancellationReasonLength))
	}

	var appointment *entities.Appointment
	var from entities.AppointmentStatus

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		appointment, err = s.repo.GetForUpdate(ctx, id, agentID)
		if err != nil {
			return err
		}
		from = appointment.Status
		if err := checkTransition(appointment.Status, entities.AppointmentStatusCancelled); err != nil {
			return err
		}

		appointment.Status = entities.AppointmentStatusCancelled
		appointment.CancellationReason = &reason
		appointment.UpdatedAt = s.now().UTC()
		return s.repo.Update(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.attachRelations(ctx, appointment)
	s.metrics.RecordTransition(ctx, string(from), string(entities.AppointmentStatusCancelled))
	s.notify(ctx, entities.AppointmentEventCancelled, appointment, map[string]interface{}{
		"status":             appointment.Status,
		"cancellationReason": reason,
	})
	return appointment, nil
}

// UpdateStatus applies an administrative status change. CONFIRMED and
// CANCELLED go through Confirm and Cancel so their side effects still apply.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus, reason string) (*entities.Appointment, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}

	switch status {
	case entities.AppointmentStatusConfirmed:
		return s.Confirm(ctx, "", id)
	case entities.AppointmentStatusCancelled:
		return s.Cancel(ctx, "", id, reason)
	}

	var appointment *entities.Appointment
	var from entities.AppointmentStatus

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		appointment, err = s.repo.GetForUpdate(ctx, id, "")
		if err != nil {
			return err
		}
		from = appointment.Status
		if err := checkTransition(appointment.Status, status); err != nil {
			return err
		}
		appointment.Status = status
		appointment.UpdatedAt = s.now().UTC()
		return s.repo.Update(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.attachRelations(ctx, appointment)
	s.metrics.RecordTransition(ctx, string(from), string(status))
	s.notify(ctx, entities.AppointmentEventStatusChanged, appointment, map[string]interface{}{
		"status": status,
	})
	return appointment, nil
}

func (s *AppointmentService) notify(ctx context.Context, eventType entities.AppointmentEventType, appointment *entities.Appointment, changed map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, entities.NewAppointmentEvent(eventType, appointment, changed), appointment)
}

func checkTransition(from, to entities.AppointmentStatus) error {
	if !from.CanTransitionTo(to) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid status transition from %s to %s", from, to))
	}
	return nil
}

// newTransactionRef returns TXN-<yyyymmdd>-<8 hex>
func newTransactionRef(at time.Time) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("TXN-%s-%s", at.Format("20060102"), strings.ToUpper(token[:8]))
}

func validateDateRange(from, to string) error {
	var fromDay, toDay time.Time
	var err error
	if from != "" {
		if fromDay, err = time.Parse(entities.DateLayout, from); err != nil {
			return apperrors.NewValidationError("dateFrom must be a date formatted YYYY-MM-DD")
		}
	}
	if to != "" {
		if toDay, err = time.Parse(entities.DateLayout, to); err != nil {
			return apperrors.NewValidationError("dateTo must be a date formatted YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && toDay.Before(fromDay) {
		return apperrors.NewValidationError("dateTo must not be before dateFrom")
	}
	return nil
}

// clientMessage returns the part of err that is safe to show a caller.
func clientMessage(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Type == apperrors.ErrorTypeInternal {
			return "internal error"
		}
		return appErr.Message
	}
	return "internal error"
}
